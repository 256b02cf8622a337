package backend

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// Result describes a completed transfer.
type Result struct {
	Bytes   int64
	Elapsed time.Duration
}

// Backend is one concrete mechanism for performing a file transfer.
// Implementations are stateless strategies; all per-job state lives on
// the job itself.
type Backend interface {
	// Name identifies the backend in logs, attempts and metrics.
	Name() string

	// Available reports whether the backend's helper tool exists on
	// this host. Checked once and cached for the process lifetime.
	Available() bool

	// CanHandle reports whether the backend applies to the given URL.
	CanHandle(url string) bool

	// Fetch downloads url to dest. On success the artifact exists
	// exactly at dest. Implementations must converge on repeated
	// invocations against the same destination (resume or overwrite,
	// never duplicate).
	Fetch(ctx context.Context, url, dest string) (Result, error)
}

// toolProbe caches an exec.LookPath result. Helper availability is a
// host property, so it is checked once, not per job.
type toolProbe struct {
	tool string
	once sync.Once
	ok   bool
}

func (p *toolProbe) available() bool {
	p.once.Do(func() {
		_, err := exec.LookPath(p.tool)
		p.ok = err == nil
	})

	return p.ok
}

// statArtifact validates that the transfer left a non-empty file at dest
// and returns its size. External tools signal success via exit status,
// but a clean exit with no output file is still a failure.
func statArtifact(dest string) (int64, error) {
	info, err := os.Stat(dest)
	if err != nil {
		return 0, fmt.Errorf("no artifact at %s: %w", dest, err)
	}

	if info.Size() == 0 {
		return 0, fmt.Errorf("empty artifact at %s", dest)
	}

	return info.Size(), nil
}
