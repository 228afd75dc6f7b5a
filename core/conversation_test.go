package core

import (
	"errors"
	"testing"
)

func TestConversation_AppendAssignsMonotonicOrder(t *testing.T) {
	c := NewConversation("s1")

	first, err := c.Append(NewUserTurn("hello"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	second, err := c.Append(NewAssistantTurn("hi there"))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}

	if first.CreatedOrder >= second.CreatedOrder {
		t.Errorf("expected strictly increasing order, got %d then %d", first.CreatedOrder, second.CreatedOrder)
	}

	snap := c.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].CreatedOrder <= snap[i-1].CreatedOrder {
			t.Errorf("snapshot order not monotonic at index %d", i)
		}
	}
}

func TestConversation_SnapshotIsDefensiveCopy(t *testing.T) {
	c := NewConversation("s2")
	if _, err := c.Append(NewUserTurn("original")); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	snap := c.Snapshot()
	snap[0].Content = "mutated"

	if got := c.Snapshot()[0].Content; got != "original" {
		t.Errorf("conversation mutated through snapshot: %q", got)
	}
}

func TestConversation_AppendedTurnIsImmutable(t *testing.T) {
	c := NewConversation("s3")
	reqs := []ToolRequest{{ID: "r1", ToolName: "arxiv_search"}}
	turn := NewToolCallTurn("", reqs)
	if _, err := c.Append(turn); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	// Mutating the caller's request slice must not reach into the log.
	reqs[0].ToolName = "changed"
	turn.ToolRequests[0].ID = "changed"

	stored := c.Snapshot()[0]
	if stored.ToolRequests[0].ToolName != "arxiv_search" || stored.ToolRequests[0].ID != "r1" {
		t.Errorf("appended turn mutated externally: %+v", stored.ToolRequests[0])
	}
}

func TestConversation_AppendRejectsMalformedTurns(t *testing.T) {
	c := NewConversation("s4")

	cases := []Turn{
		{Role: RoleUser},
		{Role: RoleAssistant},
		{Role: RoleTool, ToolCallID: "x"},
		{Role: RoleTool, Result: &ToolResult{RequestID: "x", Status: StatusOK}},
		{Role: RoleTool, ToolCallID: "x", Result: &ToolResult{RequestID: "y", Status: StatusOK}},
		{Role: Role("moderator"), Content: "hi"},
		{Role: RoleAssistant, ToolRequests: []ToolRequest{{ToolName: "missing_id"}}},
	}
	for i, turn := range cases {
		if _, err := c.Append(turn); !errors.Is(err, ErrInvalidTurn) {
			t.Errorf("case %d: expected ErrInvalidTurn, got %v", i, err)
		}
	}
	if c.Len() != 0 {
		t.Errorf("malformed turns must not be appended, log has %d entries", c.Len())
	}
}

func TestRestoreConversation_ContinuesSequence(t *testing.T) {
	orig := NewConversation("s5")
	if _, err := orig.Append(NewUserTurn("q")); err != nil {
		t.Fatal(err)
	}
	if _, err := orig.Append(NewAssistantTurn("a")); err != nil {
		t.Fatal(err)
	}

	restored, err := RestoreConversation("s5", orig.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if restored.Len() != 2 {
		t.Fatalf("expected 2 restored turns, got %d", restored.Len())
	}

	next, err := restored.Append(NewUserTurn("follow-up"))
	if err != nil {
		t.Fatal(err)
	}
	if next.CreatedOrder != 3 {
		t.Errorf("expected order 3 after restore, got %d", next.CreatedOrder)
	}
}

func TestRestoreConversation_RejectsCorruptedLogs(t *testing.T) {
	user := NewUserTurn("q")
	user.CreatedOrder = 1
	answer := NewAssistantTurn("a")
	answer.CreatedOrder = 2

	cases := []struct {
		name  string
		turns []Turn
	}{
		{"order not increasing", func() []Turn {
			dup := answer
			dup.CreatedOrder = 1
			return []Turn{user, dup}
		}()},
		{"zero order", []Turn{NewUserTurn("q")}},
		{"invalid turn", func() []Turn {
			empty := Turn{ID: NewID(), Role: RoleUser, CreatedOrder: 1}
			return []Turn{empty}
		}()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RestoreConversation("s6", tc.turns); !errors.Is(err, ErrInvalidTurn) {
				t.Fatalf("expected ErrInvalidTurn, got %v", err)
			}
		})
	}
}

func TestTurn_IsFinalAnswer(t *testing.T) {
	if !NewAssistantTurn("done").IsFinalAnswer() {
		t.Error("plain assistant turn should be final")
	}
	callTurn := NewToolCallTurn("", []ToolRequest{{ID: "r", ToolName: "plot"}})
	if callTurn.IsFinalAnswer() {
		t.Error("assistant turn with pending requests is not final")
	}
	if NewUserTurn("hi").IsFinalAnswer() {
		t.Error("user turn can never be final")
	}
}
