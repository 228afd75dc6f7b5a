package util

import (
	"encoding/json"
	"fmt"
)

// DecodeArgs converts a generic argument map into a typed argument struct via
// a JSON round trip. Arguments reach tools already validated against the
// declared schema, so decode failures indicate a schema/struct mismatch.
func DecodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
