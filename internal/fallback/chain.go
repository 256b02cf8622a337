// Package fallback tries transfer backends in priority order for a
// single job, stopping at the first success.
package fallback

import (
	"context"

	"github.com/modelfetch/modelfetch/internal/backend"
	"github.com/modelfetch/modelfetch/internal/job"
	"github.com/modelfetch/modelfetch/internal/logctx"
)

// Chain holds backends in fixed priority order. Ordering is a
// latency/availability tradeoff: faster, more specific tools first.
type Chain struct {
	backends []backend.Backend
}

// New creates a chain over the given backends. The default
// production order is hub, then aria2, then wget.
func New(backends ...backend.Backend) *Chain {
	return &Chain{backends: backends}
}

// Run drives one job through the chain and returns its terminal state.
// Unavailable or inapplicable backends are skipped with an attempt note
// only; a backend that runs and fails triggers fallback to the next.
// The job ends Failed only when every applicable backend has failed or
// none applied at all.
func (c *Chain) Run(ctx context.Context, j *job.Job) job.State {
	logger := logctx.LoggerFromContext(ctx).With("url", j.SourceURL, "dest", j.DestPath)

	j.State = job.StateRunning

	for _, b := range c.backends {
		if !b.Available() {
			j.RecordAttempt(b.Name(), "unavailable")
			logger.Debug("backend helper missing, skipping", "backend", b.Name())

			continue
		}

		if !b.CanHandle(j.SourceURL) {
			j.RecordAttempt(b.Name(), "not applicable")
			logger.Debug("backend does not apply to url, skipping", "backend", b.Name())

			continue
		}

		result, err := b.Fetch(ctx, j.SourceURL, j.DestPath)
		if err != nil {
			j.RecordAttempt(b.Name(), err.Error())
			logger.Warn("backend transfer failed, falling back", "backend", b.Name(), "err", err)

			if ctx.Err() != nil {
				break
			}

			continue
		}

		j.RecordAttempt(b.Name(), "")
		j.State = job.StateSucceeded
		j.Backend = b.Name()
		j.Bytes = result.Bytes
		j.Elapsed = result.Elapsed

		logger.Info("download succeeded", "backend", b.Name(), "bytes", result.Bytes, "elapsed", result.Elapsed.String())

		return j.State
	}

	j.State = job.StateFailed
	logger.Error("all backends exhausted", "attempted", j.AttemptedBackends())

	return j.State
}
