// Package image provides the image download tool used to pull figures from
// the web into the paper's artifact directory.
package image

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/autopaper/autopaper/core"
	"github.com/autopaper/autopaper/internal/util"
	"github.com/autopaper/autopaper/tool"
)

// maxImageBytes caps downloads at 16 MiB.
const maxImageBytes = 16 << 20

type downloadArgs struct {
	URL      string `json:"url" description:"URL of the image to download"`
	Filename string `json:"filename" description:"Name to save the image as, including extension"`
}

// Options configure the download tool.
type Options struct {
	HTTPClient *http.Client
}

// DownloadTool fetches an image over HTTP and persists it as an artifact
// under images/ so figure snippets can reference it.
type DownloadTool struct {
	client *http.Client
}

// NewDownloadTool constructs the download tool.
func NewDownloadTool(optFns ...func(o *Options)) *DownloadTool {
	opts := Options{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DownloadTool{client: opts.HTTPClient}
}

// Name returns the tool identifier.
func (t *DownloadTool) Name() string { return "download_image_from_url" }

// Description returns the description shown to models.
func (t *DownloadTool) Description() string {
	return "Download an image from a URL and save it to the session's images directory for inclusion in the paper."
}

// InputSchema returns the JSON schema of the accepted arguments.
func (t *DownloadTool) InputSchema() map[string]any {
	return util.CreateSchema(downloadArgs{})
}

// Call implements tool.Tool.
func (t *DownloadTool) Call(tc *tool.Context, args map[string]any) (any, error) {
	var da downloadArgs
	if err := util.DecodeArgs(args, &da); err != nil {
		return nil, core.NewSchemaViolation(err.Error())
	}
	if da.URL == "" || da.Filename == "" {
		return nil, core.NewSchemaViolation("url and filename are required")
	}

	req, err := http.NewRequestWithContext(tc.Context(), http.MethodGet, da.URL, nil)
	if err != nil {
		return nil, core.NewSchemaViolation(fmt.Sprintf("invalid url: %v", err))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, core.NewNetworkError("image download failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewExternalServiceError(
			fmt.Sprintf("image download returned %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, core.NewNetworkError("image download interrupted", err)
	}
	if len(data) == 0 {
		return nil, core.NewExternalServiceError("image download returned an empty body", nil)
	}

	ref := "images/" + path.Base(strings.TrimSpace(da.Filename))
	if err := tc.SaveArtifact(ref, data); err != nil {
		return nil, core.NewClassifiedError(core.ClassUnknown, "failed to save image artifact", err)
	}

	tc.Logger().Debug("image.download", "url", da.URL, "ref", ref, "bytes", len(data))
	return ref, nil
}
