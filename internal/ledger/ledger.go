// Package ledger tracks conversion jobs through their lifecycle.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is a job lifecycle state.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	// ErrNotFound indicates an unknown job ID.
	ErrNotFound = errors.New("job not found")

	// ErrTerminalState indicates a write against a completed or
	// failed job.
	ErrTerminalState = errors.New("job is in a terminal state")
)

// PageError records a page- or document-level conversion error.
type PageError struct {
	Page    int    `json:"page,omitempty"` // 0 for document-level errors
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Job is the observable record of one conversion.
type Job struct {
	ID          string      `json:"id"`
	State       State       `json:"state"`
	Filename    string      `json:"filename"`
	Engine      string      `json:"engine"`
	PageCount   int         `json:"page_count"`
	PagesDone   int         `json:"pages_done"`
	PagesFailed int         `json:"pages_failed"`
	Errors      []PageError `json:"errors,omitempty"`
	OutputPath  string      `json:"output_path,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Percent reports progress as 0-100. A job with no pages yet counted
// reports 0.
func (j *Job) Percent() int {
	if j.PageCount == 0 {
		return 0
	}
	return j.PagesDone * 100 / j.PageCount
}

func (j *Job) clone() Job {
	out := *j
	if len(j.Errors) > 0 {
		out.Errors = make([]PageError, len(j.Errors))
		copy(out.Errors, j.Errors)
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// Store is an in-memory, concurrency-safe job ledger.
type Store struct {
	mu     sync.RWMutex
	jobs   map[string]*Job
	logger *slog.Logger
}

// NewStore creates an empty ledger.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		jobs:   make(map[string]*Job),
		logger: logger,
	}
}

// Create registers a new pending job and returns a snapshot of it.
func (s *Store) Create(filename, engine string) Job {
	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		State:     StatePending,
		Filename:  filename,
		Engine:    engine,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	s.logger.Info("job created", "job_id", job.ID, "filename", filename, "engine", engine)
	return job.clone()
}

// Get returns a snapshot of the job. Reading never mutates the record,
// so repeated reads of an untouched job are identical.
func (s *Store) Get(id string) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	return job.clone(), nil
}

// List returns snapshots of all jobs.
func (s *Store) List() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job.clone())
	}
	return out
}

// MarkProcessing transitions a pending job to processing and records
// the page count discovered during validation.
func (s *Store) MarkProcessing(id string, pageCount int) error {
	return s.update(id, func(job *Job) {
		job.State = StateProcessing
		job.PageCount = pageCount
	})
}

// RecordPage advances progress after one page finishes. Failed pages
// append their error and count toward PagesFailed; every page counts
// toward PagesDone.
func (s *Store) RecordPage(id string, pageErr *PageError) error {
	return s.update(id, func(job *Job) {
		job.PagesDone++
		if pageErr != nil {
			job.PagesFailed++
			job.Errors = append(job.Errors, *pageErr)
		}
	})
}

// MarkCompleted finalizes a successful job with its output path.
func (s *Store) MarkCompleted(id, outputPath string) error {
	err := s.update(id, func(job *Job) {
		job.State = StateCompleted
		job.OutputPath = outputPath
		now := time.Now().UTC()
		job.CompletedAt = &now
	})
	if err == nil {
		s.logger.Info("job completed", "job_id", id, "output", outputPath)
	}
	return err
}

// MarkFailed finalizes a job with a document-level error.
func (s *Store) MarkFailed(id, kind, message string) error {
	err := s.update(id, func(job *Job) {
		job.State = StateFailed
		job.Errors = append(job.Errors, PageError{Kind: kind, Message: message})
		now := time.Now().UTC()
		job.CompletedAt = &now
	})
	if err == nil {
		s.logger.Warn("job failed", "job_id", id, "kind", kind, "error", message)
	}
	return err
}

// update applies fn under the write lock, rejecting unknown jobs and
// writes to terminal jobs.
func (s *Store) update(id string, fn func(*Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if job.State.Terminal() {
		return fmt.Errorf("job %s (%s): %w", id, job.State, ErrTerminalState)
	}

	fn(job)
	job.UpdatedAt = time.Now().UTC()
	return nil
}
