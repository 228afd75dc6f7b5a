package plot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/artifact"
	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/tool"
)

func testContext(t *testing.T, store core.ArtifactStore) *tool.Context {
	t.Helper()
	return tool.NewContext(context.Background(), "s1", "call-1", store, logging.NoOpLogger{})
}

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestComparisonPlotSavesPNG(t *testing.T) {
	store := artifact.NewInMemoryStore()
	pt := NewTool()

	tc := testContext(t, store)
	out, err := pt.Call(tc, map[string]any{
		"kind":     "comparison",
		"title":    "Method accuracy",
		"filename": "accuracy",
		"labels":   []any{"Baseline", "Proposed"},
		"values":   []any{0.75, 0.91},
	})
	require.NoError(t, err)
	assert.Equal(t, "plots/accuracy.png", out)
	assert.Equal(t, []string{"plots/accuracy.png"}, tc.Artifacts())

	data, err := store.Get("s1", "plots/accuracy.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "expected png header")
}

func TestLinePlotKinds(t *testing.T) {
	store := artifact.NewInMemoryStore()
	pt := NewTool()

	for _, kind := range []string{"performance", "timeline"} {
		out, err := pt.Call(testContext(t, store), map[string]any{
			"kind":     kind,
			"title":    "Loss",
			"filename": "loss_" + kind,
			"values":   []any{1.0, 0.6, 0.4, 0.3},
			"x_values": []any{1.0, 2.0, 3.0, 4.0},
		})
		require.NoError(t, err, kind)
		assert.Equal(t, "plots/loss_"+kind+".png", out)
	}
}

func TestDistributionPlot(t *testing.T) {
	store := artifact.NewInMemoryStore()
	pt := NewTool()

	samples := make([]any, 100)
	for i := range samples {
		samples[i] = float64(i % 17)
	}
	_, err := pt.Call(testContext(t, store), map[string]any{
		"kind":     "distribution",
		"title":    "Sample distribution",
		"filename": "dist",
		"values":   samples,
	})
	require.NoError(t, err)
}

func TestPlotRejectsBadShapes(t *testing.T) {
	pt := NewTool()
	cases := []map[string]any{
		{"kind": "comparison", "title": "t", "filename": "f", "labels": []any{"only one"}, "values": []any{1.0, 2.0}},
		{"kind": "performance", "title": "t", "filename": "f", "values": []any{1.0, 2.0}, "x_values": []any{1.0}},
		{"kind": "sankey", "title": "t", "filename": "f", "values": []any{1.0}},
		{"kind": "comparison", "title": "t", "filename": "f", "values": []any{}},
		{"kind": "comparison", "title": "t", "filename": "", "values": []any{1.0}},
	}
	for i, args := range cases {
		_, err := pt.Call(testContext(t, artifact.NewInMemoryStore()), args)
		require.Error(t, err, "case %d", i)
		assert.Equal(t, core.ClassSchemaViolation, core.ClassOf(err), "case %d", i)
	}
}
