package latex

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/tool"
)

func testContext(t *testing.T) *tool.Context {
	t.Helper()
	return tool.NewContext(context.Background(), "s1", "call-1", nil, logging.NoOpLogger{})
}

func TestFigureSnippet(t *testing.T) {
	ft := NewFigureTool()
	out, err := ft.Call(testContext(t), map[string]any{
		"image_path": "/tmp/out/plots/fig1.png",
		"caption":    "Accuracy per method",
		"label":      "fig:accuracy",
	})
	require.NoError(t, err)

	code := out.(string)
	assert.Contains(t, code, `\begin{figure}[htbp]`)
	assert.Contains(t, code, `\includegraphics[width=0.8\columnwidth]{images/fig1.png}`)
	assert.Contains(t, code, `\caption{Accuracy per method}`)
	assert.Contains(t, code, `\label{fig:accuracy}`)
}

func TestFigureSnippetRequiresFields(t *testing.T) {
	ft := NewFigureTool()
	_, err := ft.Call(testContext(t), map[string]any{"image_path": "a.png", "caption": "", "label": ""})
	require.Error(t, err)
	assert.Equal(t, core.ClassSchemaViolation, core.ClassOf(err))
}

func TestTableSnippet(t *testing.T) {
	tt := NewTableTool()
	out, err := tt.Call(testContext(t), map[string]any{
		"caption": "Results",
		"label":   "tab:results",
		"headers": []any{"Method", "Accuracy"},
		"rows": []any{
			[]any{"Baseline", "0.75"},
			[]any{"Proposed", "0.91"},
		},
	})
	require.NoError(t, err)

	code := out.(string)
	assert.Contains(t, code, `\begin{tabular}{cc}`)
	assert.Contains(t, code, `\toprule`)
	assert.Contains(t, code, `Method & Accuracy \\`)
	assert.Contains(t, code, `Baseline & 0.75 \\`)
	assert.Contains(t, code, `\bottomrule`)
	assert.Contains(t, code, `\label{tab:results}`)
}

func TestTableSnippetRejectsRaggedRows(t *testing.T) {
	tt := NewTableTool()
	_, err := tt.Call(testContext(t), map[string]any{
		"caption": "Results",
		"label":   "tab:results",
		"headers": []any{"A", "B"},
		"rows":    []any{[]any{"only one cell"}},
	})
	require.Error(t, err)
	assert.Equal(t, core.ClassSchemaViolation, core.ClassOf(err))
}

func TestRenderReportsMissingToolchain(t *testing.T) {
	rt := NewRenderTool(func(o *Options) {
		o.OutputDir = t.TempDir()
		o.Command = "definitely-not-a-latex-binary"
	})
	_, err := rt.Call(testContext(t), map[string]any{
		"content": `\documentclass{article}\begin{document}hi\end{document}`,
	})
	require.Error(t, err)
	assert.Equal(t, core.ClassRender, core.ClassOf(err))
	assert.True(t, strings.Contains(err.Error(), "not found"))
}

func TestRenderRejectsEmptySource(t *testing.T) {
	rt := NewRenderTool(func(o *Options) { o.OutputDir = t.TempDir() })
	_, err := rt.Call(testContext(t), map[string]any{"content": "   "})
	require.Error(t, err)
	assert.Equal(t, core.ClassSchemaViolation, core.ClassOf(err))
}
