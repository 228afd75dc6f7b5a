// Package dashboard provides the interactive visualization tool. It renders
// a research dashboard (method comparison bars, performance curves, quality
// rating radar) as an HTML page and serves it over a local HTTP endpoint so
// results can be explored in a browser alongside the static paper.
package dashboard

import (
	"bytes"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/julienschmidt/httprouter"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/tool"
)

type dashboardArgs struct {
	Title            string    `json:"title" description:"Dashboard title"`
	ComparisonLabels []string  `json:"comparison_labels,omitempty" description:"Method names for the comparison bar chart"`
	ComparisonValues []float64 `json:"comparison_values,omitempty" description:"One value per method for the comparison bar chart"`
	PerformanceX     []string  `json:"performance_x,omitempty" description:"X axis labels for the performance curve, e.g. epochs"`
	PerformanceY     []float64 `json:"performance_y,omitempty" description:"Y values for the performance curve"`
	RatingLabels     []string  `json:"rating_labels,omitempty" description:"Quality dimensions for the rating radar chart"`
	RatingValues     []float64 `json:"rating_values,omitempty" description:"Scores (0-10) per quality dimension"`
}

// Options configure the dashboard tool.
type Options struct {
	// Host to bind dashboard servers on.
	Host string
	// Port of the first dashboard; each subsequent dashboard uses the next
	// port. A port already in use fails the invocation.
	Port int
	// Logger receives server lifecycle events.
	Logger logging.Logger
}

// Tool renders dashboards and serves each on its own port. Servers live
// until Close so the user can open them after the session finishes.
type Tool struct {
	host   string
	logger logging.Logger

	mu        sync.Mutex
	nextPort  int
	listeners []net.Listener
}

// NewTool constructs the dashboard tool.
func NewTool(optFns ...func(o *Options)) *Tool {
	opts := Options{
		Host:   "127.0.0.1",
		Port:   8050,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Tool{host: opts.Host, logger: opts.Logger, nextPort: opts.Port}
}

// Name returns the tool identifier.
func (t *Tool) Name() string { return "create_research_dashboard" }

// Description returns the description shown to models.
func (t *Tool) Description() string {
	return "Create an interactive research dashboard with comparison, performance and quality rating charts, served on a local HTTP endpoint. Returns the dashboard URL."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *Tool) InputSchema() map[string]any {
	return util.CreateSchema(dashboardArgs{})
}

// Call implements tool.Tool.
func (t *Tool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var da dashboardArgs
	if err := util.DecodeArgs(args, &da); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if da.Title == "" {
		return nil, core.NewSchemaViolation("title must not be empty")
	}

	page, err := buildPage(da)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, core.NewRenderError("failed to render dashboard", err)
	}
	html := buf.Bytes()

	// Keep a static copy so the dashboard survives process shutdown.
	if err := tc.SaveArtifact("dashboards/"+util.Slug(da.Title)+".html", html); err != nil {
		tc.Logger().Warn("dashboard.artifact.save_failed", "error", err.Error())
	}

	url, err := t.serve(html)
	if err != nil {
		return nil, err
	}

	tc.RecordArtifact(url)
	tc.Logger().Info("dashboard.serving", "url", url, "title", da.Title)
	return url, nil
}

// serve binds the next configured port and serves the rendered page.
func (t *Tool) serve(html []byte) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", t.host, t.nextPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", core.NewExternalServiceError(
			fmt.Sprintf("cannot bind dashboard address %s", addr), err)
	}
	t.nextPort++
	t.listeners = append(t.listeners, ln)

	router := httprouter.New()
	router.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(html)
	})

	go func() {
		if err := http.Serve(ln, router); err != nil {
			t.logger.Debug("dashboard.server.stopped", "addr", addr, "reason", err.Error())
		}
	}()

	return "http://" + addr + "/", nil
}

// Close stops all dashboard servers started by this tool.
func (t *Tool) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	var firstErr error
	for _, ln := range t.listeners {
		if err := ln.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	t.listeners = nil
	return firstErr
}

func buildPage(da dashboardArgs) (*components.Page, error) {
	page := components.NewPage()
	page.PageTitle = da.Title
	added := false

	if len(da.ComparisonValues) > 0 {
		if len(da.ComparisonLabels) != len(da.ComparisonValues) {
			return nil, core.NewSchemaViolation("comparison labels and values must have the same length")
		}
		bar := charts.NewBar()
		bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: da.Title, Subtitle: "Method comparison"}))
		data := make([]opts.BarData, len(da.ComparisonValues))
		for i, v := range da.ComparisonValues {
			data[i] = opts.BarData{Value: v}
		}
		bar.SetXAxis(da.ComparisonLabels).AddSeries("score", data)
		page.AddCharts(bar)
		added = true
	}

	if len(da.PerformanceY) > 0 {
		x := da.PerformanceX
		if len(x) == 0 {
			x = make([]string, len(da.PerformanceY))
			for i := range x {
				x[i] = fmt.Sprintf("%d", i+1)
			}
		}
		if len(x) != len(da.PerformanceY) {
			return nil, core.NewSchemaViolation("performance_x and performance_y must have the same length")
		}
		line := charts.NewLine()
		line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: da.Title, Subtitle: "Performance analysis"}))
		data := make([]opts.LineData, len(da.PerformanceY))
		for i, v := range da.PerformanceY {
			data[i] = opts.LineData{Value: v}
		}
		line.SetXAxis(x).AddSeries("metric", data)
		page.AddCharts(line)
		added = true
	}

	if len(da.RatingValues) > 0 {
		if len(da.RatingLabels) != len(da.RatingValues) {
			return nil, core.NewSchemaViolation("rating labels and values must have the same length")
		}
		indicators := make([]*opts.Indicator, len(da.RatingLabels))
		for i, name := range da.RatingLabels {
			indicators[i] = &opts.Indicator{Name: name, Max: 10}
		}
		radar := charts.NewRadar()
		radar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: da.Title, Subtitle: "Quality rating"}),
			charts.WithRadarComponentOpts(opts.RadarComponent{Indicator: indicators}),
		)
		radar.AddSeries("rating", []opts.RadarData{{Value: da.RatingValues}})
		page.AddCharts(radar)
		added = true
	}

	if !added {
		return nil, core.NewSchemaViolation("dashboard needs at least one data series")
	}
	return page, nil
}
