package sqlite

import (
	"github.com/modelfetch/modelfetch/internal/manifest"
	"github.com/modelfetch/modelfetch/internal/telemetry"
)

// InstrumentedRepository wraps a JobRepository with telemetry.
type InstrumentedRepository struct {
	repo *JobRepository
	tel  *telemetry.Telemetry
}

func NewInstrumentedRepository(repo *JobRepository, tel *telemetry.Telemetry) *InstrumentedRepository {
	return &InstrumentedRepository{repo: repo, tel: tel}
}

func (r *InstrumentedRepository) TrackJob(rec manifest.Record) error {
	err := r.repo.TrackJob(rec)
	r.tel.RecordDBOperation("track_job", statusOf(err))

	return err
}

func (r *InstrumentedRepository) GetRecords() ([]manifest.Record, error) {
	records, err := r.repo.GetRecords()
	r.tel.RecordDBOperation("get_records", statusOf(err))

	return records, err
}

func (r *InstrumentedRepository) GetFailed() ([]manifest.Record, error) {
	records, err := r.repo.GetFailed()
	r.tel.RecordDBOperation("get_failed", statusOf(err))

	return records, err
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}

	return "success"
}
