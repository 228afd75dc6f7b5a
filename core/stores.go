package core

// ToolSpec is the declarative description of a registered tool exposed to
// the reasoner: a unique name, a natural-language description and a JSON
// Schema for the accepted arguments.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ConversationStore persists the ordered turn log of sessions. Persistence
// is optional: the control loop is correct without it, a store only enables
// resuming a session in a later process. Implementations must preserve
// append order and be safe for concurrent use.
type ConversationStore interface {
	// AppendTurn records a turn at the end of the session's log.
	AppendTurn(sessionID string, t Turn) error
	// Turns returns the full ordered log for the session. A missing
	// session yields an empty slice, not an error.
	Turns(sessionID string) ([]Turn, error)
	// Delete removes the session's log if present.
	Delete(sessionID string) error
}

// ArtifactStore persists artifact bytes produced by tools as side effects,
// scoped by session. Implementations must be safe for concurrent use.
type ArtifactStore interface {
	Save(sessionID, ref string, data []byte) error
	Get(sessionID, ref string) ([]byte, error)
	List(sessionID string) ([]string, error)
	Delete(sessionID, ref string) error
}
