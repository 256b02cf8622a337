package downloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modelfetch/modelfetch/internal/downloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))

	return path
}

func TestGate_DefaultPolicy(t *testing.T) {
	dir := t.TempDir()
	gate := downloader.NewGate(false)

	tests := []struct {
		name     string
		path     string
		wantSize int64
		skip     bool
	}{
		{"missing file", filepath.Join(dir, "missing.bin"), 0, false},
		{"empty file", writeFile(t, dir, "empty.bin", 0), 0, false},
		{"non-empty file", writeFile(t, dir, "full.bin", 1024), 0, true},
		// The default gate accepts any non-empty file, even one smaller
		// than the declared size. Known rerun tradeoff.
		{"truncated file", writeFile(t, dir, "trunc.bin", 10), 1024, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, _ := gate.ShouldSkip(tt.path, tt.wantSize)
			assert.Equal(t, tt.skip, skip)
		})
	}
}

func TestGate_StrictPolicy(t *testing.T) {
	dir := t.TempDir()
	gate := downloader.NewGate(true)

	tests := []struct {
		name     string
		path     string
		wantSize int64
		skip     bool
	}{
		{"exact size match", writeFile(t, dir, "exact.bin", 1024), 1024, true},
		{"truncated file", writeFile(t, dir, "trunc.bin", 10), 1024, false},
		{"unknown expected size falls back to non-empty", writeFile(t, dir, "unknown.bin", 10), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skip, _ := gate.ShouldSkip(tt.path, tt.wantSize)
			assert.Equal(t, tt.skip, skip)
		})
	}
}
