package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of a resolution job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusExtracting JobStatus = "extracting"
	StatusResolving  JobStatus = "resolving"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Job tracks the state of a single document resolution.
type Job struct {
	mu sync.Mutex

	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized directly.
	fileData []byte
	debug    bool
	result   *Result
	errMsg   string
}

// NewJob creates a queued job holding the uploaded file bytes.
func NewJob(filename string, data []byte, debug bool) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		debug:     debug,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// SetResult records the final payload and marks the job completed.
func (j *Job) SetResult(r Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &r
	j.fileData = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail records a terminal error.
func (j *Job) Fail(phase, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errMsg = msg
	j.fileData = nil
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// LastUpdate returns the time of the most recent state change.
func (j *Job) LastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// Debug reports whether the submitter asked for diagnostic output.
func (j *Job) Debug() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.debug
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Filename string    `json:"filename"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Result   *Result   `json:"result,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Status:   j.Status,
		Phase:    j.Phase,
		Result:   j.result,
		Error:    j.errMsg,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.LastUpdate()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
