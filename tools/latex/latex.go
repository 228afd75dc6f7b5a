// Package latex provides the document rendering tools: compiling LaTeX
// source to PDF via a local pdflatex toolchain, and generating IEEE-style
// figure and table snippets for inclusion in a paper.
package latex

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

type renderArgs struct {
	Content  string `json:"content" description:"Complete LaTeX document source to compile"`
	Filename string `json:"filename,omitempty" description:"Base name for the output files without extension (default 'paper')"`
}

// Options configure the render tool.
type Options struct {
	// OutputDir is where per-session build directories are created.
	OutputDir string
	// Command is the LaTeX compiler binary (default pdflatex).
	Command string
}

// RenderTool compiles LaTeX source to PDF by shelling out to pdflatex. The
// compiler runs twice so cross references and the table of contents resolve.
type RenderTool struct {
	outputDir string
	command   string
}

// NewRenderTool constructs the render tool.
func NewRenderTool(optFns ...func(o *Options)) *RenderTool {
	opts := Options{
		OutputDir: "output",
		Command:   "pdflatex",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RenderTool{outputDir: opts.OutputDir, command: opts.Command}
}

// Name returns the tool identifier.
func (t *RenderTool) Name() string { return "render_latex_pdf" }

// Description returns the description shown to models.
func (t *RenderTool) Description() string {
	return "Compile a complete LaTeX document to PDF. Returns the path of the rendered PDF file."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *RenderTool) InputSchema() map[string]any {
	return util.CreateSchema(renderArgs{})
}

// Call implements tool.Tool.
func (t *RenderTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var ra renderArgs
	if err := util.DecodeArgs(args, &ra); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if strings.TrimSpace(ra.Content) == "" {
		return nil, core.NewSchemaViolation("content must not be empty")
	}
	if ra.Filename == "" {
		ra.Filename = "paper"
	}
	ra.Filename = filepath.Base(ra.Filename)

	if _, err := exec.LookPath(t.command); err != nil {
		return nil, core.NewRenderError(
			fmt.Sprintf("latex toolchain not available: %s not found", t.command), err)
	}

	buildDir := filepath.Join(t.outputDir, tc.SessionID())
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return nil, core.NewRenderError("failed to create build directory", err)
	}

	texPath := filepath.Join(buildDir, ra.Filename+".tex")
	if err := os.WriteFile(texPath, []byte(ra.Content), 0644); err != nil {
		return nil, core.NewRenderError("failed to write latex source", err)
	}

	// Two passes so \ref and \cite resolve.
	for pass := 0; pass < 2; pass++ {
		cmd := exec.CommandContext(tc.Context(), t.command,
			"-interaction=nonstopmode", "-halt-on-error",
			"-output-directory", buildDir, texPath)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return nil, core.NewRenderError(
				fmt.Sprintf("latex compilation failed: %s", tailLines(string(out), 20)), err)
		}
	}

	pdfPath := filepath.Join(buildDir, ra.Filename+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, core.NewRenderError("latex compiler produced no pdf", err)
	}

	tc.RecordArtifact(pdfPath)
	tc.Logger().Info("latex.render", "pdf", pdfPath)
	return pdfPath, nil
}

// tailLines returns the last n lines of s, where compiler errors live.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
