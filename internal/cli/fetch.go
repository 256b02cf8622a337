package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/modelfetch/modelfetch/internal/backend"
	"github.com/modelfetch/modelfetch/internal/config"
	"github.com/modelfetch/modelfetch/internal/downloader"
	"github.com/modelfetch/modelfetch/internal/fallback"
	"github.com/modelfetch/modelfetch/internal/http/rest"
	"github.com/modelfetch/modelfetch/internal/logctx"
	"github.com/modelfetch/modelfetch/internal/manifest/sqlite"
	"github.com/modelfetch/modelfetch/internal/notifier"
	"github.com/modelfetch/modelfetch/internal/plan"
	"github.com/modelfetch/modelfetch/internal/report"
	"github.com/modelfetch/modelfetch/internal/telemetry"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run the download plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			if planPath != "" {
				cfg.PlanPath = planPath
			}

			logger := slog.New(logctx.NewTraceHandler(
				slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
			))
			slog.SetDefault(logger)

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			return runFetch(logctx.WithLogger(ctx, logger), cfg)
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "path to the plan file (overrides MF_PLAN_PATH)")

	return cmd
}

func runFetch(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	logger.Info("modelfetch starting",
		"plan", cfg.PlanPath,
		"target_dir", cfg.TargetDir,
		"max_parallel", cfg.MaxParallel,
		"strict_size_check", cfg.StrictSizeCheck,
	)

	// =========================================================================
	// Load Plan
	p, err := plan.Load(cfg.PlanPath)
	if err != nil {
		return err
	}

	batches, err := p.JobBatches()
	if err != nil {
		return err
	}

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(telemetry.Config{
		Enabled:     cfg.TelemetryEnabled,
		ServiceName: "modelfetch",
	})
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}
	defer tel.Shutdown(context.Background())

	// =========================================================================
	// Start Manifest
	database, err := sqlite.InitDB(cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("failed to open manifest: %w", err)
	}
	defer database.Close()

	repo := sqlite.NewInstrumentedRepository(sqlite.NewJobRepository(database), tel)

	// =========================================================================
	// Start Downloader
	chain := fallback.New(
		backend.NewInstrumentedBackend(backend.NewHubClient(), tel),
		backend.NewInstrumentedBackend(backend.NewAria2Client(cfg.Aria2Connections), tel),
		backend.NewInstrumentedBackend(backend.NewWgetClient(), tel),
	)

	dl := downloader.NewDownloader(chain, downloader.NewGate(cfg.StrictSizeCheck), repo, tel, cfg.MaxParallel)
	defer dl.Close()

	// =========================================================================
	// Start Notification
	setupNotifications(ctx, dl, cfg)

	// =========================================================================
	// Start Status API
	if cfg.Web.Enabled {
		server := setupServer(ctx, dl, repo, cfg, tel)

		go func() {
			logger.Info("serving status API", "host", cfg.Web.BindAddress)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("status server error", "err", err)
			}
		}()

		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
			defer shutdownCancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to gracefully shutdown the status server", "err", err)
			}
		}()
	}

	// =========================================================================
	// Run Plan
	summaries := dl.RunPlan(ctx, batches)

	failed := 0
	for _, s := range summaries {
		failed += s.Failed
	}

	// =========================================================================
	// Final Report
	usage, err := report.Collect(ctx, cfg.TargetDir)
	if err != nil {
		logger.Warn("failed to collect disk report", "err", err)
	} else {
		logger.Info("artifacts on disk", "root", usage.Root, "files", usage.Files, "bytes", usage.HumanBytes())
	}

	if ctx.Err() != nil {
		return fmt.Errorf("run interrupted: %w", ctx.Err())
	}

	if cfg.RunFailed(failed) {
		return fmt.Errorf("%d download jobs failed (tolerance %d)", failed, cfg.MaxFailedJobs)
	}

	if failed > 0 {
		logger.Warn("run finished with failed downloads", "failed", failed)
	}

	return nil
}

func setupNotifications(ctx context.Context, dl *downloader.Downloader, cfg *config.Config) {
	logger := logctx.LoggerFromContext(ctx)

	var notif notifier.Notifier
	if cfg.WebhookURL != "" {
		notif = &notifier.WebhookNotifier{WebhookURL: cfg.WebhookURL}
	}

	go func() {
		for j := range dl.OnJobFailed {
			logger.Error("download failed",
				"url", j.SourceURL,
				"dest", j.DestPath,
				"attempted", j.AttemptedBackends(),
			)

			if notif == nil {
				continue
			}

			if notifyErr := notif.Notify("❌ Download failed: " + j.SourceURL); notifyErr != nil {
				logger.Error("failed to send notification", "err", notifyErr)
			}
		}
	}()

	go func() {
		for s := range dl.OnBatchFinished {
			if notif == nil {
				continue
			}

			msg := fmt.Sprintf("✅ Batch %s finished: %d/%d succeeded, %d skipped, %d failed (%s)",
				s.Batch, s.Succeeded, s.Total, s.Skipped, s.Failed, humanize.Bytes(uint64(s.Bytes)))

			if notifyErr := notif.Notify(msg); notifyErr != nil {
				logger.Error("failed to send notification", "batch", s.Batch, "err", notifyErr)
			}
		}
	}()
}

// setupServer prepares the status API server.
func setupServer(ctx context.Context, dl *downloader.Downloader, repo *sqlite.InstrumentedRepository, cfg *config.Config, tel *telemetry.Telemetry) *http.Server {
	h := rest.NewStatusHandler(dl, repo, cfg.TargetDir, tel)

	return &http.Server{
		Addr:         cfg.Web.BindAddress,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      h.Routes(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
