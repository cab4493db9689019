// Package tasks provides the in-memory job registry for submitted extraction runs.
//
// The registry is an encapsulated service injected into callers; state lives
// for the process lifetime only. Each submission is an independent job: two
// submissions of the same source produce two jobs.
package tasks

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the job state machine position.
type Status string

// Job statuses. Completed and Failed are terminal and immutable.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Stage names the pipeline stage currently holding the job.
type Stage string

// Pipeline stages as reported to status polls.
const (
	StageQueued      Stage = "queued"
	StageDownloading Stage = "downloading"
	StageSegmenting  Stage = "segmenting"
	StageAnalyzing   Stage = "analyzing"
	StageStoring     Stage = "storing"
	StageDone        Stage = "done"
	StageError       Stage = "error"
)

// Job is one submitted extraction run.
type Job struct {
	TaskID    uuid.UUID `json:"task_id"`
	Source    string    `json:"source"`
	Status    Status    `json:"status"`
	Stage     Stage     `json:"stage"`
	Progress  int       `json:"progress"` // 0-100, monotonic non-decreasing until terminal
	ResultRef uuid.UUID `json:"result_ref,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (j *Job) terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Registry tracks jobs across their lifecycle. All compound check-then-act
// operations are serialized internally.
type Registry struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[uuid.UUID]*Job)}
}

// ValidateSource checks a submission source for structural validity.
// A source is either a local file path or an http(s) URL.
func ValidateSource(source string) error {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return &ErrInvalidSource{Source: source, Message: "source is empty"}
	}
	if strings.Contains(trimmed, "://") {
		u, err := url.Parse(trimmed)
		if err != nil {
			return &ErrInvalidSource{Source: source, Message: "unparseable URL"}
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return &ErrInvalidSource{Source: source, Message: "unsupported URL scheme " + u.Scheme}
		}
		if u.Host == "" {
			return &ErrInvalidSource{Source: source, Message: "URL has no host"}
		}
	}
	return nil
}

// Submit registers a new queued job for source and returns its task id.
func (r *Registry) Submit(source string) (uuid.UUID, error) {
	if err := ValidateSource(source); err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	job := &Job{
		TaskID:    uuid.New(),
		Source:    source,
		Status:    StatusQueued,
		Stage:     StageQueued,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.jobs[job.TaskID] = job
	r.mu.Unlock()

	return job.TaskID, nil
}

// Get returns a snapshot of the job.
func (r *Registry) Get(taskID uuid.UUID) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[taskID]
	if !ok {
		return Job{}, &ErrNotFound{TaskID: taskID}
	}
	return *job, nil
}

// Update moves a job to stage with the given progress. Progress is clamped to
// max(current, new) so out-of-order updates from retries cannot move it
// backwards. Updates to terminal jobs are ignored.
func (r *Registry) Update(taskID uuid.UUID, stage Stage, progress int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[taskID]
	if !ok {
		return &ErrNotFound{TaskID: taskID}
	}
	if job.terminal() {
		return nil
	}

	job.Status = StatusProcessing
	job.Stage = stage
	if progress > job.Progress {
		job.Progress = progress
	}
	if job.Progress > 100 {
		job.Progress = 100
	}
	job.UpdatedAt = time.Now()
	return nil
}

// Complete marks a job completed with the stored document reference.
func (r *Registry) Complete(taskID uuid.UUID, resultRef uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[taskID]
	if !ok {
		return &ErrNotFound{TaskID: taskID}
	}
	if job.terminal() {
		return nil
	}

	job.Status = StatusCompleted
	job.Stage = StageDone
	job.Progress = 100
	job.ResultRef = resultRef
	job.UpdatedAt = time.Now()
	return nil
}

// Fail marks a job failed with a user-visible error message.
func (r *Registry) Fail(taskID uuid.UUID, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[taskID]
	if !ok {
		return &ErrNotFound{TaskID: taskID}
	}
	if job.terminal() {
		return nil
	}

	job.Status = StatusFailed
	job.Stage = StageError
	job.Progress = 100
	job.Error = message
	job.UpdatedAt = time.Now()
	return nil
}

// List returns snapshots of all jobs, newest first.
func (r *Registry) List() []Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
