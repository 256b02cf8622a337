// Package rest exposes the downloader's progress over HTTP so the
// bootstrap (or a human on the host) can watch a run without scraping
// logs.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/modelfetch/modelfetch/internal/downloader"
	"github.com/modelfetch/modelfetch/internal/logctx"
	"github.com/modelfetch/modelfetch/internal/manifest"
	"github.com/modelfetch/modelfetch/internal/report"
	"github.com/modelfetch/modelfetch/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// StatusHandler serves live progress, recorded outcomes and the disk
// report.
type StatusHandler struct {
	dl        *downloader.Downloader
	records   manifest.ReadRepository
	targetDir string
	tel       *telemetry.Telemetry
}

func NewStatusHandler(dl *downloader.Downloader, records manifest.ReadRepository, targetDir string, tel *telemetry.Telemetry) *StatusHandler {
	return &StatusHandler{dl: dl, records: records, targetDir: targetDir, tel: tel}
}

// Routes builds the router. Handlers are wrapped with otelhttp so
// status requests show up in traces alongside backend fetches.
func (h *StatusHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Method(http.MethodGet, "/healthz", otelhttp.NewHandler(http.HandlerFunc(h.healthz), "healthz"))
	r.Method(http.MethodGet, "/v1/status", otelhttp.NewHandler(http.HandlerFunc(h.status), "status"))
	r.Method(http.MethodGet, "/v1/failed", otelhttp.NewHandler(http.HandlerFunc(h.failed), "failed"))
	r.Method(http.MethodGet, "/v1/disk", otelhttp.NewHandler(http.HandlerFunc(h.disk), "disk"))
	r.Handle("/metrics", h.tel.Handler())

	return r
}

func (h *StatusHandler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// status reports the live progress of the batch currently draining.
// The completed counter is monotonic, so polling this endpoint observes
// forward progress while the pool is still running.
func (h *StatusHandler) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.dl.Progress())
}

type failedResponse struct {
	Failed []failedJob `json:"failed"`
}

type failedJob struct {
	URL     string `json:"url"`
	Dest    string `json:"dest"`
	Backend string `json:"backend,omitempty"`
}

func (h *StatusHandler) failed(w http.ResponseWriter, r *http.Request) {
	records, err := h.records.GetFailed()
	if err != nil {
		logctx.LoggerFromContext(r.Context()).Error("failed to read manifest", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "manifest unavailable"})

		return
	}

	resp := failedResponse{Failed: make([]failedJob, 0, len(records))}
	for _, rec := range records {
		resp.Failed = append(resp.Failed, failedJob{URL: rec.SourceURL, Dest: rec.DestPath, Backend: rec.Backend})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *StatusHandler) disk(w http.ResponseWriter, r *http.Request) {
	usage, err := report.Collect(r.Context(), h.targetDir)
	if err != nil {
		logctx.LoggerFromContext(r.Context()).Error("failed to collect disk usage", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "disk report unavailable"})

		return
	}

	writeJSON(w, http.StatusOK, usage)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
