// Package plot provides the research plot tool. It renders publication-style
// charts (method comparison bars, performance curves, distributions,
// timelines) to PNG artifacts.
package plot

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

// Kind selects the chart type.
const (
	KindComparison   = "comparison"
	KindPerformance  = "performance"
	KindDistribution = "distribution"
	KindTimeline     = "timeline"
)

type plotArgs struct {
	Kind     string    `json:"kind" enum:"comparison,performance,distribution,timeline" description:"Chart type: comparison (bar), performance (line), distribution (histogram) or timeline (line over years)"`
	Title    string    `json:"title" description:"Plot title"`
	Filename string    `json:"filename" description:"Base name for the PNG artifact without extension"`
	XLabel   string    `json:"x_label,omitempty" description:"X axis label"`
	YLabel   string    `json:"y_label,omitempty" description:"Y axis label"`
	Labels   []string  `json:"labels,omitempty" description:"Category labels for comparison plots; one per value"`
	Values   []float64 `json:"values" description:"Data values. For performance/timeline these are y values in x order; for distribution the raw samples"`
	XValues  []float64 `json:"x_values,omitempty" description:"Optional x values for performance/timeline plots; defaults to 0..n-1"`
}

// Tool renders one chart per call and saves it through the artifact store.
type Tool struct{}

// NewTool constructs the plot tool.
func NewTool() *Tool { return &Tool{} }

// Name returns the tool identifier.
func (t *Tool) Name() string { return "create_research_plot" }

// Description returns the description shown to models.
func (t *Tool) Description() string {
	return "Render an academic-quality plot (comparison bar chart, performance curve, distribution histogram or timeline) as a PNG artifact."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *Tool) InputSchema() map[string]any {
	return util.CreateSchema(plotArgs{})
}

// Call implements tool.Tool.
func (t *Tool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var pa plotArgs
	if err := util.DecodeArgs(args, &pa); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if pa.Filename == "" {
		return nil, core.NewSchemaViolation("filename must not be empty")
	}
	if len(pa.Values) == 0 {
		return nil, core.NewSchemaViolation("values must not be empty")
	}

	p := plot.New()
	p.Title.Text = pa.Title
	p.X.Label.Text = pa.XLabel
	p.Y.Label.Text = pa.YLabel

	var err error
	switch pa.Kind {
	case KindComparison:
		err = addBars(p, pa)
	case KindPerformance, KindTimeline:
		err = addLine(p, pa)
	case KindDistribution:
		err = addHistogram(p, pa)
	default:
		return nil, core.NewSchemaViolation(fmt.Sprintf("unknown plot kind %q", pa.Kind))
	}
	if err != nil {
		return nil, err
	}

	w, err := p.WriterTo(8*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, core.NewRenderError("failed to render plot", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, core.NewRenderError("failed to encode plot", err)
	}

	ref := "plots/" + pa.Filename + ".png"
	if err := tc.SaveArtifact(ref, buf.Bytes()); err != nil {
		return nil, core.NewRenderError("failed to save plot artifact", err)
	}

	tc.Logger().Debug("plot.render", "kind", pa.Kind, "ref", ref)
	return ref, nil
}

func addBars(p *plot.Plot, pa plotArgs) error {
	if len(pa.Labels) != len(pa.Values) {
		return core.NewSchemaViolation(
			fmt.Sprintf("comparison plots need one label per value: %d labels, %d values",
				len(pa.Labels), len(pa.Values)))
	}
	bars, err := plotter.NewBarChart(plotter.Values(pa.Values), vg.Points(30))
	if err != nil {
		return core.NewRenderError("failed to build bar chart", err)
	}
	p.Add(bars)
	p.NominalX(pa.Labels...)
	return nil
}

func addLine(p *plot.Plot, pa plotArgs) error {
	if len(pa.XValues) > 0 && len(pa.XValues) != len(pa.Values) {
		return core.NewSchemaViolation(
			fmt.Sprintf("x_values length %d does not match values length %d",
				len(pa.XValues), len(pa.Values)))
	}
	pts := make(plotter.XYs, len(pa.Values))
	for i, v := range pa.Values {
		x := float64(i)
		if len(pa.XValues) > 0 {
			x = pa.XValues[i]
		}
		pts[i].X = x
		pts[i].Y = v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return core.NewRenderError("failed to build line plot", err)
	}
	line.Width = vg.Points(2)
	p.Add(line, plotter.NewGrid())
	return nil
}

func addHistogram(p *plot.Plot, pa plotArgs) error {
	hist, err := plotter.NewHist(plotter.Values(pa.Values), 30)
	if err != nil {
		return core.NewRenderError("failed to build histogram", err)
	}
	hist.Normalize(1)
	p.Add(hist)
	return nil
}
