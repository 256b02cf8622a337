package backend

import (
	"context"

	"github.com/modelfetch/modelfetch/internal/telemetry"
)

// InstrumentedBackend wraps a Backend with telemetry. Availability and
// applicability checks stay unobserved; only actual fetches are
// measured.
type InstrumentedBackend struct {
	backend   Backend
	telemetry *telemetry.Telemetry
}

// NewInstrumentedBackend creates a telemetry-wrapped backend.
func NewInstrumentedBackend(b Backend, tel *telemetry.Telemetry) *InstrumentedBackend {
	return &InstrumentedBackend{backend: b, telemetry: tel}
}

func (b *InstrumentedBackend) Name() string { return b.backend.Name() }

func (b *InstrumentedBackend) Available() bool { return b.backend.Available() }

func (b *InstrumentedBackend) CanHandle(url string) bool { return b.backend.CanHandle(url) }

func (b *InstrumentedBackend) Fetch(ctx context.Context, url, dest string) (Result, error) {
	var result Result

	var err error

	instrumentedErr := b.telemetry.InstrumentBackendFetch(ctx, b.backend.Name(), url, func(ctx context.Context) error {
		result, err = b.backend.Fetch(ctx, url, dest)

		return err
	})

	if instrumentedErr != nil {
		return Result{}, instrumentedErr
	}

	b.telemetry.RecordDownload(b.backend.Name(), result.Bytes, result.Elapsed)

	return result, nil
}
