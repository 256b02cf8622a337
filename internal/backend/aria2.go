package backend

import (
	"context"
	"path/filepath"
	"strconv"
	"time"
)

const (
	aria2Tool               = "aria2c"
	defaultAria2Connections = 16
)

// Aria2Client is the multi-connection accelerator. It applies to any
// URL and resumes partial downloads in place.
type Aria2Client struct {
	probe       toolProbe
	connections int
}

func NewAria2Client(connections int) *Aria2Client {
	if connections <= 0 {
		connections = defaultAria2Connections
	}

	return &Aria2Client{probe: toolProbe{tool: aria2Tool}, connections: connections}
}

func (c *Aria2Client) Name() string { return "aria2" }

func (c *Aria2Client) Available() bool { return c.probe.available() }

func (c *Aria2Client) CanHandle(string) bool { return true }

func (c *Aria2Client) Fetch(ctx context.Context, url, dest string) (Result, error) {
	if !c.Available() {
		return Result{}, &UnavailableError{Backend: c.Name(), Tool: aria2Tool}
	}

	start := time.Now()
	conns := strconv.Itoa(c.connections)

	err := runTool(ctx, aria2Tool,
		"--continue=true",
		"--allow-overwrite=true",
		"--auto-file-renaming=false",
		"--max-connection-per-server="+conns,
		"--split="+conns,
		"--dir="+filepath.Dir(dest),
		"--out="+filepath.Base(dest),
		url,
	)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	size, err := statArtifact(dest)
	if err != nil {
		return Result{}, &TransferError{Backend: c.Name(), URL: url, Reason: err.Error(), Err: err}
	}

	return Result{Bytes: size, Elapsed: time.Since(start)}, nil
}
