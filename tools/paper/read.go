// Package paper provides the read tool: it fetches a paper by URL and
// extracts its text, handling both PDF files and HTML abstract pages.
package paper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

const defaultMaxChars = 40000

// maxDownloadBytes caps paper downloads at 32 MiB.
const maxDownloadBytes = 32 << 20

type readArgs struct {
	URL      string `json:"url" description:"URL of the paper to read, either a PDF link or an abstract page"`
	MaxChars int    `json:"max_chars,omitempty" description:"Maximum number of characters of extracted text to return"`
}

// Options configure the read tool.
type Options struct {
	HTTPClient *http.Client
}

// ReadTool downloads a paper and returns its plain text. PDF bodies go
// through text extraction; HTML bodies are stripped of chrome and converted
// to markdown.
type ReadTool struct {
	client *http.Client
}

// NewReadTool constructs the read tool with optional overrides.
func NewReadTool(optFns ...func(o *Options)) *ReadTool {
	opts := Options{
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ReadTool{client: opts.HTTPClient}
}

// Name returns the tool identifier.
func (t *ReadTool) Name() string { return "read_paper" }

// Description returns the description shown to models.
func (t *ReadTool) Description() string {
	return "Download a research paper from a URL and return its text content. Supports PDF files and HTML abstract pages."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *ReadTool) InputSchema() map[string]any {
	return util.CreateSchema(readArgs{})
}

// Call implements tool.Tool.
func (t *ReadTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var ra readArgs
	if err := util.DecodeArgs(args, &ra); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if ra.URL == "" {
		return nil, core.NewSchemaViolation("url must not be empty")
	}
	if ra.MaxChars <= 0 {
		ra.MaxChars = defaultMaxChars
	}

	req, err := http.NewRequestWithContext(tc.Context(), http.MethodGet, ra.URL, nil)
	if err != nil {
		return nil, core.NewSchemaViolation(fmt.Sprintf("invalid url: %v", err))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewNetworkError("paper download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewExternalServiceError(
			fmt.Sprintf("paper download returned %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, core.NewNetworkError("paper download interrupted", err)
	}

	var text string
	if isPDF(resp.Header.Get("Content-Type"), body) {
		text, err = extractPDFText(body)
	} else {
		text, err = extractHTMLText(string(body))
	}
	if err != nil {
		return nil, core.NewExternalServiceError("failed to extract paper text", err)
	}

	if len(text) > ra.MaxChars {
		text = truncate(text, ra.MaxChars) + "\n[truncated]"
	}

	tc.Logger().Debug("paper.read", "url", ra.URL, "chars", len(text))
	return text, nil
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isPDF(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/pdf") {
		return true
	}
	return bytes.HasPrefix(body, []byte("%PDF"))
}

// extractPDFText recovers parser panics; the pdf library panics on some
// malformed files instead of returning an error.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

var multipleNewlines = regexp.MustCompile(`\n{3,}`)

// extractHTMLText strips non-content elements from an HTML page and converts
// the remainder to markdown.
func extractHTMLText(input string) (string, error) {
	cleaned := input
	if doc, err := html.Parse(strings.NewReader(input)); err == nil {
		removeUnwantedNodes(doc)
		var buf bytes.Buffer
		if err := html.Render(&buf, doc); err == nil {
			cleaned = buf.String()
		}
	}

	markdown, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}

	markdown = multipleNewlines.ReplaceAllString(markdown, "\n\n")
	return strings.TrimSpace(markdown), nil
}

var unwantedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"nav":      true,
	"aside":    true,
	"iframe":   true,
	"svg":      true,
}

func removeUnwantedNodes(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		removeUnwantedNodes(child)
		child = next
	}
	if n.Type == html.ElementNode && unwantedTags[n.Data] && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}
