package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	Topic      string   `json:"topic" description:"Search topic"`
	MaxResults int      `json:"max_results,omitempty" description:"Result cap"`
	Kind       string   `json:"kind" enum:"comparison,performance"`
	Labels     []string `json:"labels,omitempty"`
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sampleArgs{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	topic := props["topic"].(map[string]any)
	assert.Equal(t, "string", topic["type"])
	assert.Equal(t, "Search topic", topic["description"])

	maxResults := props["max_results"].(map[string]any)
	assert.Equal(t, "integer", maxResults["type"])

	kind := props["kind"].(map[string]any)
	assert.ElementsMatch(t, []any{"comparison", "performance"}, kind["enum"])

	labels := props["labels"].(map[string]any)
	assert.Equal(t, "array", labels["type"])
	assert.Equal(t, map[string]any{"type": "string"}, labels["items"])

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"topic", "kind"}, required)
}

func TestCreateSchema_NonStruct(t *testing.T) {
	schema := CreateSchema(42)
	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}
