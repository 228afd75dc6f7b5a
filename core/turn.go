package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks turns containing end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks turns produced by the reasoner: either a textual
	// reply or a batch of tool invocation requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks turns carrying the result of a single tool invocation.
	RoleTool Role = "tool"
)

// ToolRequest is a structured tool invocation emitted by the reasoner.
// ID is unique per request and pairs the request with its eventual result.
type ToolRequest struct {
	ID        string          `json:"id"`
	ToolName  string          `json:"tool_name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ResultStatus is the terminal status of a tool invocation.
type ResultStatus string

const (
	// StatusOK indicates the tool body completed and produced a payload.
	StatusOK ResultStatus = "ok"
	// StatusError indicates the invocation failed with a classified reason.
	StatusError ResultStatus = "error"
)

// ToolResult is the uniform outcome shape of one tool invocation. Exactly one
// ToolResult exists per ToolRequest; RequestID links the two. On success
// Payload holds the tool-specific output and ArtifactRefs any references
// (file paths, URLs) to artifacts the tool persisted as a side effect. On
// failure ErrorDetail carries the classified reason and ErrorMessage a
// human-readable description; the raw error never escapes into the log.
type ToolResult struct {
	RequestID    string       `json:"request_id"`
	ToolName     string       `json:"tool_name"`
	Status       ResultStatus `json:"status"`
	Payload      any          `json:"payload,omitempty"`
	ErrorDetail  Class        `json:"error_detail,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	ArtifactRefs []string     `json:"artifact_refs,omitempty"`
}

// OK reports whether the invocation succeeded.
func (r ToolResult) OK() bool { return r.Status == StatusOK }

// Turn is one immutable entry of a Conversation. Turns are value types; once
// appended they are never altered. CreatedOrder is assigned by the owning
// Conversation and establishes a strict total order over the history.
//
// Field usage by role:
//   - user: Content only
//   - assistant: Content (final answer) and/or ToolRequests (a batch)
//   - tool: ToolCallID pairing the turn with its request, plus Result
type Turn struct {
	ID           string        `json:"id"`
	Role         Role          `json:"role"`
	Content      string        `json:"content,omitempty"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	ToolCallID   string        `json:"tool_call_id,omitempty"`
	Result       *ToolResult   `json:"result,omitempty"`
	CreatedOrder int64         `json:"created_order"`
	Timestamp    time.Time     `json:"timestamp"`
}

// NewID generates a unique identifier for turns and tool requests.
func NewID() string { return uuid.NewString() }

func newTurn(role Role) Turn {
	return Turn{ID: NewID(), Role: role, Timestamp: time.Now().UTC()}
}

// NewUserTurn creates a user-authored text turn.
func NewUserTurn(content string) Turn {
	t := newTurn(RoleUser)
	t.Content = content
	return t
}

// NewAssistantTurn creates an assistant turn carrying a final textual reply.
func NewAssistantTurn(content string) Turn {
	t := newTurn(RoleAssistant)
	t.Content = content
	return t
}

// NewToolCallTurn creates an assistant turn carrying a batch of tool
// invocation requests, preserving the order the reasoner emitted them.
// Content holds any reasoning text that accompanied the batch; it may be
// empty.
func NewToolCallTurn(content string, requests []ToolRequest) Turn {
	t := newTurn(RoleAssistant)
	t.Content = content
	t.ToolRequests = append([]ToolRequest(nil), requests...)
	return t
}

// NewToolResultTurn creates a tool turn recording the result of a single
// invocation, linked to its originating request via the request id.
func NewToolResultTurn(result ToolResult) Turn {
	t := newTurn(RoleTool)
	t.ToolCallID = result.RequestID
	res := result
	t.Result = &res
	return t
}

// Requests returns the tool invocation requests embedded in this turn
// preserving their original order. Nil for non-assistant turns.
func (t Turn) Requests() []ToolRequest {
	if t.Role != RoleAssistant {
		return nil
	}
	return t.ToolRequests
}

// IsFinalAnswer reports whether this turn is a terminal assistant reply,
// i.e. an assistant turn with no pending tool requests.
func (t Turn) IsFinalAnswer() bool {
	return t.Role == RoleAssistant && len(t.ToolRequests) == 0
}

// clone returns a deep copy so appended turns cannot be mutated through
// slices or pointers held by the caller.
func (t Turn) clone() Turn {
	c := t
	c.ToolRequests = append([]ToolRequest(nil), t.ToolRequests...)
	if len(c.ToolRequests) == 0 {
		c.ToolRequests = nil
	}
	if t.Result != nil {
		res := *t.Result
		res.ArtifactRefs = append([]string(nil), t.Result.ArtifactRefs...)
		if len(res.ArtifactRefs) == 0 {
			res.ArtifactRefs = nil
		}
		c.Result = &res
	}
	return c
}
