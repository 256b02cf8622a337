package downloader

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/modelfetch/modelfetch/internal/job"
	"github.com/modelfetch/modelfetch/internal/logctx"
	"github.com/modelfetch/modelfetch/internal/manifest"
	"github.com/modelfetch/modelfetch/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

const defaultMaxParallel = 6

// Runner drives a single job to a terminal state. Implemented by
// fallback.Chain; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, j *job.Job) job.State
}

// Progress is a point-in-time view of a running batch, safe to read
// from a concurrent caller.
type Progress struct {
	Batch     string `json:"batch"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Failed    int64  `json:"failed"`
}

// Downloader drains batches of download jobs through a bounded worker
// pool. Individual job failures never abort the batch; the caller
// decides what an aggregate failure count means.
type Downloader struct {
	runner      Runner
	gate        *Gate
	records     manifest.WriteRepository
	tel         *telemetry.Telemetry
	maxParallel int

	batchName atomic.Value
	total     atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64

	// OnJobFailed and OnBatchFinished deliver events best effort: when
	// no consumer keeps up, events are dropped rather than stalling the
	// pool. The batch summary remains the authoritative record.
	OnJobFailed     chan *job.Job
	OnBatchFinished chan *job.BatchSummary
}

// NewDownloader creates a downloader. records may be nil when manifest
// tracking is disabled.
func NewDownloader(
	runner Runner,
	gate *Gate,
	records manifest.WriteRepository,
	tel *telemetry.Telemetry,
	maxParallel int,
) *Downloader {
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	return &Downloader{
		runner:      runner,
		gate:        gate,
		records:     records,
		tel:         tel,
		maxParallel: maxParallel,

		OnJobFailed:     make(chan *job.Job, maxParallel),
		OnBatchFinished: make(chan *job.BatchSummary, 1),
	}
}

func (d *Downloader) Close() {
	close(d.OnJobFailed)
	close(d.OnBatchFinished)
}

// Progress returns a snapshot of the currently running batch. The
// completed counter is monotonic within a batch, so callers polling it
// observe progress without waiting for the batch to drain.
func (d *Downloader) Progress() Progress {
	name, _ := d.batchName.Load().(string)

	return Progress{
		Batch:     name,
		Total:     d.total.Load(),
		Completed: d.completed.Load(),
		Failed:    d.failed.Load(),
	}
}

// RunBatch dispatches the batch's jobs in list order through a pool of
// at most maxParallel concurrent workers, blocking until every job
// reaches a terminal state. It returns the per-batch summary.
func (d *Downloader) RunBatch(ctx context.Context, batch *job.Batch) *job.BatchSummary {
	logger := logctx.LoggerFromContext(ctx).With("batch", batch.Name)

	d.batchName.Store(batch.Name)
	d.total.Store(int64(len(batch.Jobs)))
	d.completed.Store(0)
	d.failed.Store(0)

	logger.Info("starting batch", "jobs", len(batch.Jobs), "max_parallel", d.maxParallel)

	wg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, d.maxParallel)

	for i := range batch.Jobs {
		j := batch.Jobs[i]

		// Waiting for a free slot races against cancellation: a cancel
		// mid-batch must stop dispatch even while the pool is full.
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}

		if ctx.Err() != nil {
			break
		}

		wg.Go(func() error {
			defer func() { <-sem }() // release the slot

			d.runJob(ctx, j)
			d.completed.Add(1)

			if j.State == job.StateFailed {
				d.failed.Add(1)
			}

			// A failed job is contained and aggregated, never an error
			// for the group: the batch stays fault-isolated per job.
			return nil
		})
	}

	_ = wg.Wait()

	summary := batch.Summarize()
	logger.Info("batch finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	select {
	case d.OnBatchFinished <- summary:
	default:
	}

	return summary
}

// RunPlan runs batches in order and returns their summaries. Batches
// never overlap; a batch's failures carry into the next only as counts.
func (d *Downloader) RunPlan(ctx context.Context, batches []*job.Batch) []*job.BatchSummary {
	summaries := make([]*job.BatchSummary, 0, len(batches))

	for _, b := range batches {
		if ctx.Err() != nil {
			break
		}

		summaries = append(summaries, d.RunBatch(ctx, b))
	}

	return summaries
}

func (d *Downloader) runJob(ctx context.Context, j *job.Job) {
	logger := logctx.LoggerFromContext(ctx).With("url", j.SourceURL, "dest", j.DestPath)

	if skip, reason := d.gate.ShouldSkip(j.DestPath, j.WantSize); skip {
		j.State = job.StateSkipped
		logger.Info("skipping download", "reason", reason)
		d.tel.RecordJob(string(job.StateSkipped), "")
		d.record(ctx, j)

		return
	}

	d.tel.IncrementActiveDownloads()
	defer d.tel.DecrementActiveDownloads()

	start := time.Now()
	state := d.runner.Run(ctx, j)

	d.tel.RecordJob(string(state), j.Backend)
	d.record(ctx, j)

	if state == job.StateFailed {
		logger.Error("job failed after exhausting backends",
			"attempted", j.AttemptedBackends(),
			"elapsed", time.Since(start).String(),
		)

		select {
		case d.OnJobFailed <- j:
		default:
		}
	}
}

func (d *Downloader) record(ctx context.Context, j *job.Job) {
	if d.records == nil {
		return
	}

	if err := d.records.TrackJob(manifest.Record{
		SourceURL:  j.SourceURL,
		DestPath:   j.DestPath,
		Backend:    j.Backend,
		Bytes:      j.Bytes,
		Status:     string(j.State),
		FinishedAt: time.Now().UTC(),
	}); err != nil {
		// Manifest writes are best effort; the filesystem remains the
		// source of truth for reruns.
		logctx.LoggerFromContext(ctx).Warn("failed to track job in manifest", "dest", j.DestPath, "err", err)
	}
}
