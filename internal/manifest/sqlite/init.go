package sqlite

import (
	"database/sql"

	// Import the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite manifest and creates the jobs table if it
// doesn't exist. Destination paths are unique: a rerun upserts the
// latest outcome for each artifact.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY,
		dest_path TEXT UNIQUE,
		source_url TEXT,
		backend TEXT,
		bytes INTEGER DEFAULT 0,
		status TEXT,
		finished_at DATETIME
	)`)

	if err != nil {
		return nil, err
	}

	return db, nil
}
