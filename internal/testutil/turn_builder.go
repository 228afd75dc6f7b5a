package testutil

import (
	"encoding/json"

	"github.com/autopaper/autopaper/core"
)

// TurnBuilder provides a fluent helper for constructing turns in tests.
// Example:
//
//	turn := NewTurnBuilder().User("hello").Order(1).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type TurnBuilder struct {
	turn core.Turn
}

// NewTurnBuilder creates a builder with a fresh turn id.
func NewTurnBuilder() *TurnBuilder {
	return &TurnBuilder{turn: core.Turn{ID: core.NewID()}}
}

// ID overrides the auto-generated turn ID (chainable). Use mainly in tests
// where determinism matters.
func (b *TurnBuilder) ID(id string) *TurnBuilder { b.turn.ID = id; return b }

// Order sets the created order assigned by the owning conversation (chainable).
func (b *TurnBuilder) Order(n int64) *TurnBuilder { b.turn.CreatedOrder = n; return b }

// User sets the turn to a user-authored text turn (chainable).
func (b *TurnBuilder) User(text string) *TurnBuilder {
	b.turn.Role = core.RoleUser
	b.turn.Content = text
	return b
}

// Assistant sets the turn to an assistant turn carrying a final reply (chainable).
func (b *TurnBuilder) Assistant(text string) *TurnBuilder {
	b.turn.Role = core.RoleAssistant
	b.turn.Content = text
	return b
}

// ToolCall sets the turn to an assistant turn carrying invocation requests (chainable).
func (b *TurnBuilder) ToolCall(requests ...core.ToolRequest) *TurnBuilder {
	b.turn.Role = core.RoleAssistant
	b.turn.ToolRequests = requests
	return b
}

// ToolResult sets the turn to a tool turn recording the given result (chainable).
func (b *TurnBuilder) ToolResult(result core.ToolResult) *TurnBuilder {
	b.turn.Role = core.RoleTool
	b.turn.ToolCallID = result.RequestID
	res := result
	b.turn.Result = &res
	return b
}

// Build returns the assembled turn.
func (b *TurnBuilder) Build() core.Turn { return b.turn }

// Request constructs a tool invocation request with JSON-encoded arguments.
// Panics on unencodable arguments, which is acceptable in tests.
func Request(id, toolName string, args map[string]any) core.ToolRequest {
	raw, err := json.Marshal(args)
	if err != nil {
		panic(err)
	}
	return core.ToolRequest{ID: id, ToolName: toolName, Arguments: raw}
}

// History assembles an ordered slice of turns, assigning sequential created
// orders starting at 1 to any turn whose order is unset.
func History(builders ...*TurnBuilder) []core.Turn {
	turns := make([]core.Turn, 0, len(builders))
	for i, b := range builders {
		t := b.Build()
		if t.CreatedOrder == 0 {
			t.CreatedOrder = int64(i + 1)
		}
		turns = append(turns, t)
	}
	return turns
}
