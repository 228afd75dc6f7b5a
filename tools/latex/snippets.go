package latex

import (
	"fmt"
	"path"
	"strings"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

type figureArgs struct {
	ImagePath string `json:"image_path" description:"Path of the image file to include"`
	Caption   string `json:"caption" description:"Figure caption"`
	Label     string `json:"label" description:"Label for \\ref, e.g. fig:results"`
	Width     string `json:"width,omitempty" description:"Width specification (default 0.8\\columnwidth)"`
}

// FigureTool generates an IEEE-style figure environment referencing an image
// from the paper's images directory.
type FigureTool struct{}

// NewFigureTool constructs the figure snippet tool.
func NewFigureTool() *FigureTool { return &FigureTool{} }

// Name returns the tool identifier.
func (t *FigureTool) Name() string { return "latex_figure" }

// Description returns the description shown to models.
func (t *FigureTool) Description() string {
	return "Generate LaTeX code for including a figure with caption and label in IEEE format."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *FigureTool) InputSchema() map[string]any {
	return util.CreateSchema(figureArgs{})
}

// Call implements tool.Tool.
func (t *FigureTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var fa figureArgs
	if err := util.DecodeArgs(args, &fa); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if fa.ImagePath == "" || fa.Caption == "" || fa.Label == "" {
		return nil, core.NewSchemaViolation("image_path, caption and label are required")
	}
	if fa.Width == "" {
		fa.Width = `0.8\columnwidth`
	}

	// Images live next to the document under images/, regardless of where
	// the source file came from.
	rel := fa.ImagePath
	if !strings.HasPrefix(rel, "images/") {
		rel = "images/" + path.Base(rel)
	}

	code := fmt.Sprintf(`\begin{figure}[htbp]
\centering
\includegraphics[width=%s]{%s}
\caption{%s}
\label{%s}
\end{figure}`, fa.Width, rel, fa.Caption, fa.Label)

	return code, nil
}

type tableArgs struct {
	Caption string     `json:"caption" description:"Table caption"`
	Label   string     `json:"label" description:"Label for \\ref, e.g. tab:results"`
	Headers []string   `json:"headers" description:"Column headers"`
	Rows    [][]string `json:"rows" description:"Table body rows; each row must have one cell per header"`
}

// TableTool generates an IEEE-style booktabs table from headers and rows.
type TableTool struct{}

// NewTableTool constructs the table snippet tool.
func NewTableTool() *TableTool { return &TableTool{} }

// Name returns the tool identifier.
func (t *TableTool) Name() string { return "latex_table" }

// Description returns the description shown to models.
func (t *TableTool) Description() string {
	return "Generate LaTeX code for a booktabs-styled table with caption and label in IEEE format."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *TableTool) InputSchema() map[string]any {
	return util.CreateSchema(tableArgs{})
}

// Call implements tool.Tool.
func (t *TableTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var ta tableArgs
	if err := util.DecodeArgs(args, &ta); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if len(ta.Headers) == 0 {
		return nil, core.NewSchemaViolation("headers must not be empty")
	}
	for i, row := range ta.Rows {
		if len(row) != len(ta.Headers) {
			return nil, core.NewSchemaViolation(
				fmt.Sprintf("row %d has %d cells, expected %d", i, len(row), len(ta.Headers)))
		}
	}

	var rows []string
	for _, row := range ta.Rows {
		rows = append(rows, strings.Join(row, " & ")+` \\`)
	}

	code := fmt.Sprintf(`\begin{table}[htbp]
\centering
\caption{%s}
\label{%s}
\begin{tabular}{%s}
\toprule
%s \\
\midrule
%s
\bottomrule
\end{tabular}
\end{table}`,
		ta.Caption,
		ta.Label,
		strings.Repeat("c", len(ta.Headers)),
		strings.Join(ta.Headers, " & "),
		strings.Join(rows, "\n"))

	return code, nil
}
