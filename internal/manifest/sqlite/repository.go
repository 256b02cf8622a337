package sqlite

import (
	"database/sql"
	"time"

	"github.com/modelfetch/modelfetch/internal/manifest"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(dbConn *sql.DB) *JobRepository {
	return &JobRepository{db: dbConn}
}

// TrackJob upserts the terminal outcome for a destination path.
func (r *JobRepository) TrackJob(rec manifest.Record) error {
	_, err := r.db.Exec(`
		INSERT INTO jobs (dest_path, source_url, backend, bytes, status, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(dest_path) DO UPDATE SET
			source_url = excluded.source_url,
			backend = excluded.backend,
			bytes = excluded.bytes,
			status = excluded.status,
			finished_at = excluded.finished_at
	`, rec.DestPath, rec.SourceURL, rec.Backend, rec.Bytes, rec.Status, rec.FinishedAt.Format(time.RFC3339))

	return err
}

func (r *JobRepository) GetRecords() ([]manifest.Record, error) {
	return r.query(`SELECT dest_path, source_url, backend, bytes, status, finished_at FROM jobs ORDER BY finished_at DESC`)
}

func (r *JobRepository) GetFailed() ([]manifest.Record, error) {
	return r.query(`SELECT dest_path, source_url, backend, bytes, status, finished_at FROM jobs WHERE status = 'failed' ORDER BY finished_at DESC`)
}

func (r *JobRepository) query(q string) ([]manifest.Record, error) {
	rows, err := r.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []manifest.Record

	for rows.Next() {
		var rec manifest.Record

		var backend sql.NullString

		var finishedAt string

		if err := rows.Scan(&rec.DestPath, &rec.SourceURL, &backend, &rec.Bytes, &rec.Status, &finishedAt); err != nil {
			return nil, err
		}

		if backend.Valid {
			rec.Backend = backend.String
		}

		if ts, err := time.Parse(time.RFC3339, finishedAt); err == nil {
			rec.FinishedAt = ts
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}
