package autopaper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopaper/autopaper/config"
	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/logging"
	"github.com/autopaper/autopaper/reasoner"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.OutputDir = t.TempDir()
	return cfg
}

func TestNewRegistersResearchTools(t *testing.T) {
	ap, err := New(testConfig(t), func(o *Options) {
		o.Reasoner = reasoner.NewScripted(reasoner.FinalStep("ok"))
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)
	defer ap.Close()

	names := make(map[string]bool)
	for _, spec := range ap.Specs() {
		names[spec.Name] = true
		assert.NotEmpty(t, spec.Description, spec.Name)
		assert.NotNil(t, spec.InputSchema, spec.Name)
	}
	for _, want := range []string{
		"arxiv_search", "read_paper", "render_latex_pdf", "latex_figure",
		"latex_table", "create_research_plot", "create_research_dashboard",
		"download_image_from_url",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestSessionRunsThroughFacade(t *testing.T) {
	ap, err := New(testConfig(t), func(o *Options) {
		o.Reasoner = reasoner.NewScripted(reasoner.FinalStep("the answer"))
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)
	defer ap.Close()

	s := ap.NewSession("")
	res, err := s.Submit(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "the answer", res.Answer)
}

func TestResumeSessionLoadsPersistedTurns(t *testing.T) {
	cfg := testConfig(t)
	ap, err := New(cfg, func(o *Options) {
		o.Reasoner = reasoner.NewScripted(
			reasoner.FinalStep("first"),
			reasoner.FinalStep("second"),
		)
		o.Logger = logging.NoOpLogger{}
	})
	require.NoError(t, err)
	defer ap.Close()

	s := ap.NewSession("research-1")
	_, err = s.Submit(context.Background(), "hello")
	require.NoError(t, err)

	resumed, err := ap.ResumeSession("research-1")
	require.NoError(t, err)
	require.Len(t, resumed.History(), 2)

	res, err := resumed.Submit(context.Background(), "continue")
	require.NoError(t, err)
	assert.Equal(t, "second", res.Answer)
	assert.Equal(t, core.RoleAssistant, resumed.History()[3].Role)
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.Reasoner.Provider = "nonsense"
	_, err := New(cfg)
	require.Error(t, err)
}
