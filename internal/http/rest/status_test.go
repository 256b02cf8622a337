package rest_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelfetch/modelfetch/internal/downloader"
	"github.com/modelfetch/modelfetch/internal/http/rest"
	"github.com/modelfetch/modelfetch/internal/manifest"
	"github.com/modelfetch/modelfetch/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	records []manifest.Record
	err     error
}

func (f *fakeRecords) GetRecords() ([]manifest.Record, error) { return f.records, f.err }
func (f *fakeRecords) GetFailed() ([]manifest.Record, error)  { return f.records, f.err }

func newServer(t *testing.T, records manifest.ReadRepository, targetDir string) *httptest.Server {
	t.Helper()

	tel, err := telemetry.New(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	dl := downloader.NewDownloader(nil, downloader.NewGate(false), nil, tel, 1)
	t.Cleanup(dl.Close)

	h := rest.NewStatusHandler(dl, records, targetDir, tel)
	ts := httptest.NewServer(h.Routes())
	t.Cleanup(ts.Close)

	return ts
}

func TestHealthz(t *testing.T) {
	ts := newServer(t, &fakeRecords{}, t.TempDir())

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	ts := newServer(t, &fakeRecords{}, t.TempDir())

	resp, err := http.Get(ts.URL + "/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var progress downloader.Progress
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&progress))
	assert.Zero(t, progress.Total)
}

func TestFailed(t *testing.T) {
	records := &fakeRecords{records: []manifest.Record{
		{SourceURL: "https://example.com/a.bin", DestPath: "/models/a.bin", Status: "failed"},
	}}
	ts := newServer(t, records, t.TempDir())

	resp, err := http.Get(ts.URL + "/v1/failed")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Failed []struct {
			URL  string `json:"url"`
			Dest string `json:"dest"`
		} `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Failed, 1)
	assert.Equal(t, "/models/a.bin", body.Failed[0].Dest)
}

func TestFailed_ManifestError(t *testing.T) {
	ts := newServer(t, &fakeRecords{err: errors.New("db locked")}, t.TempDir())

	resp, err := http.Get(ts.URL + "/v1/failed")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "m.bin"), make([]byte, 256), 0o644))

	ts := newServer(t, &fakeRecords{}, dir)

	resp, err := http.Get(ts.URL + "/v1/disk")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var usage struct {
		Files int   `json:"files"`
		Bytes int64 `json:"bytes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&usage))
	assert.Equal(t, 1, usage.Files)
	assert.Equal(t, int64(256), usage.Bytes)
}

func TestDisk_MissingRoot(t *testing.T) {
	ts := newServer(t, &fakeRecords{}, filepath.Join(t.TempDir(), "nope"))

	resp, err := http.Get(ts.URL + "/v1/disk")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
