package backend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

const hubTool = "hfdownloader"

// hubURLPattern matches hub-hosted artifact URLs of the form
// https://huggingface.co/<owner>/<repo>/resolve/<revision>/<path>.
var hubURLPattern = regexp.MustCompile(`^https?://huggingface\.co/([^/]+)/([^/]+)/resolve/([^/]+)/(.+)$`)

// HubClient downloads hub-hosted model artifacts through the
// repository-aware helper. It is the fastest backend but applies only
// to one hosting provider and needs the helper installed.
type HubClient struct {
	probe toolProbe
}

func NewHubClient() *HubClient {
	return &HubClient{probe: toolProbe{tool: hubTool}}
}

func (c *HubClient) Name() string { return "hub" }

func (c *HubClient) Available() bool { return c.probe.available() }

func (c *HubClient) CanHandle(url string) bool {
	return hubURLPattern.MatchString(url)
}

// hubSource is the structured identifier parsed out of a hub URL.
type hubSource struct {
	Repo     string // "owner/name"
	Revision string
	FilePath string // path within the repository
}

// parseHubURL extracts the repository id and in-repository file path
// from a hub artifact URL.
func parseHubURL(url string) (hubSource, bool) {
	m := hubURLPattern.FindStringSubmatch(url)
	if m == nil {
		return hubSource{}, false
	}

	return hubSource{
		Repo:     m[1] + "/" + m[2],
		Revision: m[3],
		FilePath: m[4],
	}, true
}

// Fetch downloads through the helper into a staging directory next to
// the destination, then moves the artifact into place. The helper lays
// files out by repository, so staging keeps the final artifact exactly
// at dest and leaves nothing behind.
func (c *HubClient) Fetch(ctx context.Context, url, dest string) (Result, error) {
	if !c.Available() {
		return Result{}, &UnavailableError{Backend: c.Name(), Tool: hubTool}
	}

	src, ok := parseHubURL(url)
	if !ok {
		return Result{}, &NotApplicableError{Backend: c.Name(), URL: url}
	}

	staging := dest + ".hubstage"
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: "staging dir: " + err.Error(), Err: err}
	}
	defer os.RemoveAll(staging)

	start := time.Now()

	err := runTool(ctx, hubTool,
		"download",
		"--repo", src.Repo,
		"--revision", src.Revision,
		"--file", src.FilePath,
		"--output", staging,
	)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	if err := promoteArtifact(filepath.Join(staging, filepath.FromSlash(src.FilePath)), dest); err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	size, err := statArtifact(dest)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	return Result{Bytes: size, Elapsed: time.Since(start)}, nil
}

// promoteArtifact moves the staged file into its final destination,
// replacing any partial artifact from a previous run.
func promoteArtifact(staged, dest string) error {
	if _, err := os.Stat(staged); err != nil {
		return fmt.Errorf("helper produced no artifact: %w", err)
	}

	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace destination: %w", err)
	}

	if err := os.Rename(staged, dest); err != nil {
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}

	return nil
}
