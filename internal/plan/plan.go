// Package plan loads the ordered list of download batches supplied by
// the image bootstrap.
package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/modelfetch/modelfetch/internal/job"
	"gopkg.in/yaml.v3"
)

// Entry is one (url, dest) pair in the plan file. Size is optional and
// only consulted by the strict idempotency gate.
type Entry struct {
	URL  string `yaml:"url"`
	Dest string `yaml:"dest"`
	Size int64  `yaml:"size,omitempty"`
}

// BatchSpec is one named batch of entries.
type BatchSpec struct {
	Name  string  `yaml:"name"`
	Files []Entry `yaml:"files"`
}

// Plan is the full download plan: batches run in order, files within a
// batch run concurrently.
type Plan struct {
	Batches []BatchSpec `yaml:"batches"`
}

// Load reads and validates a plan file.
func Load(path string) (*Plan, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	return Parse(raw)
}

// Parse decodes and validates plan bytes.
func Parse(raw []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return &p, nil
}

// validate enforces plan invariants up front: non-empty fields,
// absolute destinations, and no destination claimed twice anywhere in
// the plan. Distinct output paths are what let the pool run without
// file locking.
func (p *Plan) validate() error {
	if len(p.Batches) == 0 {
		return fmt.Errorf("plan has no batches")
	}

	seen := make(map[string]string)

	for bi, b := range p.Batches {
		if b.Name == "" {
			return fmt.Errorf("batch %d has no name", bi)
		}

		if len(b.Files) == 0 {
			return fmt.Errorf("batch %q has no files", b.Name)
		}

		for fi, f := range b.Files {
			if f.URL == "" {
				return fmt.Errorf("batch %q file %d has no url", b.Name, fi)
			}

			if f.Dest == "" {
				return fmt.Errorf("batch %q file %d has no dest", b.Name, fi)
			}

			if !filepath.IsAbs(f.Dest) {
				return fmt.Errorf("batch %q: destination must be absolute: %s", b.Name, f.Dest)
			}

			if prev, ok := seen[f.Dest]; ok {
				return fmt.Errorf("destination %s claimed by both batch %q and batch %q", f.Dest, prev, b.Name)
			}

			seen[f.Dest] = b.Name
		}
	}

	return nil
}

// JobBatches converts the plan into runnable job batches.
func (p *Plan) JobBatches() ([]*job.Batch, error) {
	batches := make([]*job.Batch, 0, len(p.Batches))

	for _, spec := range p.Batches {
		jobs := make([]*job.Job, 0, len(spec.Files))
		for _, f := range spec.Files {
			jobs = append(jobs, job.New(f.URL, f.Dest, f.Size))
		}

		b, err := job.NewBatch(spec.Name, jobs)
		if err != nil {
			return nil, err
		}

		batches = append(batches, b)
	}

	return batches, nil
}
