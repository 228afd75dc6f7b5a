package core

import (
	"fmt"
	"sync"
	"time"
)

// ErrInvalidTurn is returned by Append when a turn is missing required
// fields. It is the only failure mode of Append.
var ErrInvalidTurn = fmt.Errorf("invalid turn")

// Conversation is the append-only ordered log of turns for one session. It
// is the single source of truth the reasoner consumes. Turns are immutable
// once appended; the log only grows, never rewrites history. A Conversation
// is owned exclusively by one session but is safe for concurrent access.
type Conversation struct {
	id        string
	mu        sync.RWMutex
	turns     []Turn
	nextOrder int64
	created   time.Time
	updated   time.Time
}

// NewConversation creates an empty conversation for the given session id.
func NewConversation(id string) *Conversation {
	now := time.Now().UTC()
	return &Conversation{id: id, nextOrder: 1, created: now, updated: now}
}

// RestoreConversation rebuilds a conversation from a persisted ordered turn
// log, keeping the recorded CreatedOrder values. Restored turns are held to
// the same validity rules as appended ones and their orders must be strictly
// increasing; a corrupted log yields ErrInvalidTurn. The next appended turn
// continues the sequence after the highest restored order.
func RestoreConversation(id string, turns []Turn) (*Conversation, error) {
	c := NewConversation(id)
	var lastOrder int64
	for i, t := range turns {
		if err := validateTurn(t); err != nil {
			return nil, fmt.Errorf("restored turn %d: %w", i, err)
		}
		if t.CreatedOrder <= lastOrder {
			return nil, fmt.Errorf("%w: restored turn %d order %d not after %d",
				ErrInvalidTurn, i, t.CreatedOrder, lastOrder)
		}
		lastOrder = t.CreatedOrder
		c.turns = append(c.turns, t.clone())
	}
	c.nextOrder = lastOrder + 1
	return c, nil
}

// ID returns the session identifier this conversation belongs to.
func (c *Conversation) ID() string { return c.id }

// Append validates the turn, assigns it the next strictly increasing
// CreatedOrder and adds it to the log. The stored copy is returned so the
// caller can observe the assigned order. The only error is ErrInvalidTurn.
func (c *Conversation) Append(t Turn) (Turn, error) {
	if err := validateTurn(t); err != nil {
		return Turn{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := t.clone()
	if stored.ID == "" {
		stored.ID = NewID()
	}
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	stored.CreatedOrder = c.nextOrder
	c.nextOrder++
	c.turns = append(c.turns, stored)
	c.updated = time.Now().UTC()

	return stored.clone(), nil
}

// Snapshot returns the full ordered sequence of turns as a copy.
// Callers must treat the snapshot as read-only history; mutating it has no
// effect on the conversation.
func (c *Conversation) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, 0, len(c.turns))
	for _, t := range c.turns {
		out = append(out, t.clone())
	}
	return out
}

// Len returns the number of appended turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Last returns the most recent turn and true, or a zero turn and false for
// an empty conversation.
func (c *Conversation) Last() (Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.turns) == 0 {
		return Turn{}, false
	}
	return c.turns[len(c.turns)-1].clone(), true
}

func validateTurn(t Turn) error {
	switch t.Role {
	case RoleUser:
		if t.Content == "" {
			return fmt.Errorf("%w: user turn requires content", ErrInvalidTurn)
		}
	case RoleAssistant:
		if t.Content == "" && len(t.ToolRequests) == 0 {
			return fmt.Errorf("%w: assistant turn requires content or tool requests", ErrInvalidTurn)
		}
		for _, req := range t.ToolRequests {
			if req.ID == "" || req.ToolName == "" {
				return fmt.Errorf("%w: tool request requires id and tool name", ErrInvalidTurn)
			}
		}
	case RoleTool:
		if t.ToolCallID == "" || t.Result == nil {
			return fmt.Errorf("%w: tool turn requires tool_call_id and result", ErrInvalidTurn)
		}
		if t.Result.RequestID != t.ToolCallID {
			return fmt.Errorf("%w: tool turn result does not match tool_call_id", ErrInvalidTurn)
		}
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidTurn, t.Role)
	}
	return nil
}
