// Package manifest records terminal download outcomes. The manifest is
// informational: the idempotency gate looks only at the filesystem, so
// losing the manifest never changes rerun behavior.
package manifest

import "time"

// Record is one terminal job outcome.
type Record struct {
	SourceURL  string
	DestPath   string
	Backend    string
	Bytes      int64
	Status     string
	FinishedAt time.Time
}

// ReadRepository serves the status API and the disk report.
type ReadRepository interface {
	GetRecords() ([]Record, error)
	GetFailed() ([]Record, error)
}

// WriteRepository persists job outcomes as they reach terminal states.
type WriteRepository interface {
	TrackJob(r Record) error
}
