package tool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_DuplicateNameRejected(t *testing.T) {
	a := &stubTool{name: "arxiv_search"}
	b := &stubTool{name: "arxiv_search"}

	_, err := NewRegistry(Definition{Tool: a}, Definition{Tool: b})
	assert.Error(t, err)
}

func TestRegistry_DefaultsApplied(t *testing.T) {
	reg, err := NewRegistry(Definition{Tool: &stubTool{name: "plot"}})
	require.NoError(t, err)

	def, ok := reg.Get("plot")
	require.True(t, ok)
	assert.Equal(t, 30*time.Second, def.Timeout)
	assert.Equal(t, DefaultRetryPolicy(), def.Retry)
}

func TestRegistry_SpecsPreserveRegistrationOrder(t *testing.T) {
	reg, err := NewRegistry(
		Definition{Tool: &stubTool{name: "arxiv_search", schema: topicSchema()}},
		Definition{Tool: &stubTool{name: "read_paper"}},
		Definition{Tool: &stubTool{name: "render_latex"}},
	)
	require.NoError(t, err)

	specs := reg.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, []string{"arxiv_search", "read_paper", "render_latex"}, reg.Names())
	assert.Equal(t, "arxiv_search", specs[0].Name)
	assert.NotNil(t, specs[0].InputSchema["properties"])
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := MustNewRegistry()
	_, ok := reg.Get("missing")
	assert.False(t, ok)
}
