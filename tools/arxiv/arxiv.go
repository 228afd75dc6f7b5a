// Package arxiv provides the paper search tool backed by the arXiv Atom API.
package arxiv

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

const defaultBaseURL = "http://export.arxiv.org/api/query"

// Paper is one search hit returned to the reasoner.
type Paper struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Summary   string   `json:"summary"`
	Link      string   `json:"link"`
	Published string   `json:"published"`
	Authors   []string `json:"authors"`
}

type searchArgs struct {
	Topic      string `json:"topic" description:"Topic to search for, e.g. 'sparse attention transformers'"`
	MaxResults int    `json:"max_results,omitempty" description:"Maximum number of papers to return (default 5)"`
}

// Options configure the search tool.
type Options struct {
	// BaseURL overrides the arXiv API endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// SearchTool queries the arXiv API for recent papers on a topic, newest
// first. Results are returned in the API's order.
type SearchTool struct {
	baseURL string
	client  *http.Client
}

// NewSearchTool constructs the search tool with optional overrides.
func NewSearchTool(optFns ...func(o *Options)) *SearchTool {
	opts := Options{
		BaseURL:    defaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SearchTool{baseURL: opts.BaseURL, client: opts.HTTPClient}
}

// Name returns the tool identifier.
func (t *SearchTool) Name() string { return "arxiv_search" }

// Description returns the description shown to models.
func (t *SearchTool) Description() string {
	return "Search arxiv.org for recently published papers on a topic, newest first. Returns paper ids, titles, abstracts, links and authors."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *SearchTool) InputSchema() map[string]any {
	return util.CreateSchema(searchArgs{})
}

// Call implements tool.Tool.
func (t *SearchTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var sa searchArgs
	if err := util.DecodeArgs(args, &sa); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if sa.MaxResults <= 0 {
		sa.MaxResults = 5
	}

	query, err := buildQuery(sa.Topic)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?search_query=all:%s&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		t.baseURL, query, sa.MaxResults)

	req, err := http.NewRequestWithContext(tc.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, core.NewNetworkError("failed to build arxiv request", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewNetworkError("arxiv request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, core.NewExternalServiceError(
			fmt.Sprintf("arxiv api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}

	papers, err := parseFeed(resp.Body)
	if err != nil {
		return nil, core.NewExternalServiceError("failed to parse arxiv response", err)
	}

	tc.Logger().Debug("arxiv.search", "topic", sa.Topic, "results", len(papers))
	return papers, nil
}

// buildQuery lowercases the topic and joins words with '+'. Characters the
// arXiv query syntax reserves are rejected rather than escaped, matching the
// API's all:<terms> form.
func buildQuery(topic string) (string, error) {
	query := strings.Join(strings.Fields(strings.ToLower(topic)), "+")
	if query == "" {
		return "", core.NewSchemaViolation("topic must not be empty")
	}
	for _, ch := range `()" ` {
		if strings.ContainsRune(query, ch) {
			return "", core.NewSchemaViolation(fmt.Sprintf("cannot have character %q in query %q", ch, query))
		}
	}
	return query, nil
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Links     []atomLink   `xml:"link"`
	Authors   []atomAuthor `xml:"author"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

func parseFeed(r io.Reader) ([]Paper, error) {
	var feed atomFeed
	if err := xml.NewDecoder(r).Decode(&feed); err != nil {
		return nil, err
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		p := Paper{
			ID:        strings.TrimSpace(e.ID),
			Title:     strings.Join(strings.Fields(e.Title), " "),
			Summary:   strings.TrimSpace(e.Summary),
			Published: strings.TrimSpace(e.Published),
		}
		for _, l := range e.Links {
			if l.Type == "application/pdf" {
				p.Link = l.Href
				break
			}
		}
		if p.Link == "" && len(e.Links) > 0 {
			p.Link = e.Links[0].Href
		}
		for _, a := range e.Authors {
			p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
		}
		papers = append(papers, p)
	}
	return papers, nil
}
