package backend

import (
	"context"
	"time"
)

const wgetTool = "wget"

// WgetClient is the single-connection fallback: slow, but it needs
// nothing beyond a plain HTTP connection.
type WgetClient struct {
	probe toolProbe
}

func NewWgetClient() *WgetClient {
	return &WgetClient{probe: toolProbe{tool: wgetTool}}
}

func (c *WgetClient) Name() string { return "wget" }

func (c *WgetClient) Available() bool { return c.probe.available() }

func (c *WgetClient) CanHandle(string) bool { return true }

func (c *WgetClient) Fetch(ctx context.Context, url, dest string) (Result, error) {
	if !c.Available() {
		return Result{}, &UnavailableError{Backend: c.Name(), Tool: wgetTool}
	}

	start := time.Now()

	// -c resumes a partial artifact from an interrupted run.
	// --no-verbose keeps progress chatter down while leaving error
	// lines on stderr, so a failure reason survives into the attempt
	// trail.
	err := runTool(ctx, wgetTool, "-c", "--no-verbose", "-O", dest, url)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	size, err := statArtifact(dest)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	return Result{Bytes: size, Elapsed: time.Since(start)}, nil
}
