package job

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a download job. Terminal states
// (Skipped, Succeeded, Failed) are never revisited within a run.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSkipped   State = "skipped"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Terminal reports whether s is a terminal state.
func (s State) Terminal() bool {
	return s == StateSkipped || s == StateSucceeded || s == StateFailed
}

// Attempt records one backend try for a job.
type Attempt struct {
	Backend string
	Reason  string
}

// Job is a single file transfer: one source URL downloaded to one
// absolute destination path.
type Job struct {
	SourceURL string
	DestPath  string

	// WantSize is the expected artifact size in bytes, when the plan
	// declares one. Zero means unknown.
	WantSize int64

	State    State
	Attempts []Attempt

	// Backend is the name of the backend that produced the artifact.
	// Set only when State is StateSucceeded.
	Backend string

	Bytes   int64
	Elapsed time.Duration
}

// New creates a pending job for the given source and destination.
func New(sourceURL, destPath string, wantSize int64) *Job {
	return &Job{
		SourceURL: sourceURL,
		DestPath:  destPath,
		WantSize:  wantSize,
		State:     StatePending,
	}
}

// RecordAttempt appends a backend try to the job's diagnostics trail.
func (j *Job) RecordAttempt(backend, reason string) {
	j.Attempts = append(j.Attempts, Attempt{Backend: backend, Reason: reason})
}

// AttemptedBackends returns the ordered list of backend names tried so far.
func (j *Job) AttemptedBackends() []string {
	names := make([]string, 0, len(j.Attempts))
	for _, a := range j.Attempts {
		names = append(names, a.Backend)
	}

	return names
}

// Batch is an ordered set of jobs submitted and awaited together.
type Batch struct {
	Name string
	Jobs []*Job
}

// NewBatch builds a batch from jobs, rejecting duplicate destination
// paths. Two jobs must never write the same destination concurrently,
// so a duplicate is a construction error rather than a runtime race.
func NewBatch(name string, jobs []*Job) (*Batch, error) {
	seen := make(map[string]struct{}, len(jobs))

	for _, j := range jobs {
		if _, ok := seen[j.DestPath]; ok {
			return nil, fmt.Errorf("duplicate destination path in batch %q: %s", name, j.DestPath)
		}

		seen[j.DestPath] = struct{}{}
	}

	return &Batch{Name: name, Jobs: jobs}, nil
}

// BatchSummary aggregates terminal job states for one batch.
type BatchSummary struct {
	Batch     string `json:"batch"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Skipped   int    `json:"skipped"`
	Failed    int    `json:"failed"`
	Bytes     int64  `json:"bytes"`
}

// Summarize computes the summary from the batch's current job states.
func (b *Batch) Summarize() *BatchSummary {
	s := &BatchSummary{Batch: b.Name, Total: len(b.Jobs)}

	for _, j := range b.Jobs {
		switch j.State {
		case StateSucceeded:
			s.Succeeded++
			s.Bytes += j.Bytes
		case StateSkipped:
			s.Skipped++
		case StateFailed:
			s.Failed++
		}
	}

	return s
}

// FailedJobs returns the jobs that exhausted every backend.
func (b *Batch) FailedJobs() []*Job {
	var failed []*Job

	for _, j := range b.Jobs {
		if j.State == StateFailed {
			failed = append(failed, j)
		}
	}

	return failed
}
