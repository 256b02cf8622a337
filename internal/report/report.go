// Package report summarizes what ended up on disk after a run.
package report

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/modelfetch/modelfetch/internal/logctx"
)

// DiskUsage aggregates the artifacts under a destination root.
type DiskUsage struct {
	Root  string `json:"root"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
}

// HumanBytes renders the total in human-readable form.
func (d DiskUsage) HumanBytes() string {
	return humanize.Bytes(uint64(d.Bytes))
}

// Collect walks the destination root and counts the files present and
// the bytes they occupy. Informational only; unreadable entries are
// logged and skipped rather than failing the report. A root that cannot
// be read at all is a real error, not an empty report.
func Collect(ctx context.Context, root string) (DiskUsage, error) {
	logger := logctx.LoggerFromContext(ctx)
	usage := DiskUsage{Root: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			logger.Warn("skipping unreadable entry in report", "path", path, "err", err)

			return nil
		}

		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("failed to stat file for report", "path", path, "err", err)

			return nil
		}

		usage.Files++
		usage.Bytes += info.Size()

		return nil
	})
	if err != nil {
		return usage, err
	}

	return usage, nil
}
