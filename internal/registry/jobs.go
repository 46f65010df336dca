package registry

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"formfill-agent/internal/domain"

	"github.com/google/uuid"
)

// Jobs is the process-wide job registry. Records live for the lifetime of the
// process; nothing is persisted across restarts.
//
// Records are kept by value and every update swaps in a fresh copy under the
// write lock, so a concurrent reader sees either the old or the new record,
// never a half-written one.
type Jobs struct {
	log *slog.Logger

	mu   sync.RWMutex
	jobs map[string]domain.Job
}

func NewJobs(log *slog.Logger) *Jobs {
	return &Jobs{
		log:  log,
		jobs: make(map[string]domain.Job),
	}
}

// Create allocates a record in queued status under a fresh identifier.
func (r *Jobs) Create(uploadID, formURL string, files map[string]string) domain.Job {
	job := domain.Job{
		ID:        uuid.New().String(),
		UploadID:  uploadID,
		FormURL:   formURL,
		Files:     files,
		Status:    domain.StatusQueued,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	r.log.Info("job created",
		slog.String("job_id", job.ID),
		slog.String("upload_id", uploadID),
		slog.String("form_url", formURL),
	)

	return job
}

// Get returns a snapshot of the record, or domain.ErrJobNotFound.
func (r *Jobs) Get(id string) (domain.Job, error) {
	r.mu.RLock()
	job, ok := r.jobs[id]
	r.mu.RUnlock()

	if !ok {
		return domain.Job{}, domain.ErrJobNotFound
	}

	return job, nil
}

// List returns snapshots of all records, most recent first.
func (r *Jobs) List() []domain.Job {
	r.mu.RLock()
	jobs := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	r.mu.RUnlock()

	slices.SortFunc(jobs, func(a, b domain.Job) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return jobs
}

// SetStatus advances a job to a later non-terminal stage. Transitions that
// regress or leave a terminal state are rejected.
func (r *Jobs) SetStatus(id string, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}

	if !job.Status.CanTransition(status) {
		return fmt.Errorf("invalid status transition %q -> %q", job.Status, status)
	}

	job.Status = status
	r.jobs[id] = job

	r.log.Info("job status update",
		slog.String("job_id", id),
		slog.String("status", string(status)),
	)

	return nil
}

// SetResult stores the fill result and moves the job to the terminal done
// status in a single record replace.
func (r *Jobs) SetResult(id string, result domain.FillResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}

	if !job.Status.CanTransition(domain.StatusDone) {
		return fmt.Errorf("invalid status transition %q -> %q", job.Status, domain.StatusDone)
	}

	now := time.Now()
	job.Status = domain.StatusDone
	job.Result = &result
	job.CompletedAt = &now
	r.jobs[id] = job

	r.log.Info("job result stored", slog.String("job_id", id))

	return nil
}

// SetError records a stage failure and moves the job to the terminal error
// status in a single record replace.
func (r *Jobs) SetError(id, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return domain.ErrJobNotFound
	}

	if !job.Status.CanTransition(domain.StatusError) {
		return fmt.Errorf("invalid status transition %q -> %q", job.Status, domain.StatusError)
	}

	now := time.Now()
	job.Status = domain.StatusError
	job.Error = message
	job.CompletedAt = &now
	r.jobs[id] = job

	r.log.Error("job failed",
		slog.String("job_id", id),
		slog.String("err", message),
	)

	return nil
}
