package downloader

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
)

// Gate decides whether a destination already holds a complete artifact,
// making whole-batch reruns idempotent.
//
// The default completeness signal is deliberately weak: a file that
// exists with size > 0 counts as done, with no checksum. A truncated
// prior download is therefore wrongly accepted; that is the documented
// rerun contract, not a bug. Strict mode tightens the check to an exact
// size match whenever the plan declares an expected size.
type Gate struct {
	strict bool
}

// NewGate creates a gate. With strict true, a declared expected size
// must match exactly for the job to be skipped.
func NewGate(strict bool) *Gate {
	return &Gate{strict: strict}
}

// ShouldSkip reports whether the job's destination is already complete,
// with a human-readable reason when it is.
func (g *Gate) ShouldSkip(dest string, wantSize int64) (bool, string) {
	info, err := os.Stat(dest)
	if err != nil {
		return false, ""
	}

	if info.Size() == 0 {
		return false, ""
	}

	if g.strict && wantSize > 0 {
		if info.Size() != wantSize {
			return false, ""
		}

		return true, fmt.Sprintf("size matches expected %s", humanize.Bytes(uint64(wantSize)))
	}

	return true, fmt.Sprintf("already present (%s)", humanize.Bytes(uint64(info.Size())))
}
