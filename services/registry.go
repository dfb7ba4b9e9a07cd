package services

import (
	"log"
	"sync"
	"time"

	"tubegrab/types"

	"github.com/google/uuid"
)

// Registry is the in-memory source of truth for download jobs. Reads return
// value snapshots, so callers never observe a half-applied update. Writes
// enforce the job state machine: starting -> downloading -> finished, with
// error reachable from any non-terminal state; anything else is a logged
// no-op. Jobs are retained for the life of the process.
type Registry interface {
	Create(url, formatID string) types.DownloadJob
	Get(id string) (types.DownloadJob, bool)
	List() []types.DownloadJob
	SetProgress(id string, percent float64, speed, eta string) (types.DownloadJob, bool)
	SetFinished(id, filename string) (types.DownloadJob, bool)
	SetError(id, reason string) (types.DownloadJob, bool)
}

type registry struct {
	mu   sync.RWMutex
	jobs map[string]*types.DownloadJob
}

// NewRegistry creates an empty job registry.
func NewRegistry() Registry {
	return &registry{
		jobs: make(map[string]*types.DownloadJob),
	}
}

// Create allocates a fresh job in the starting state.
func (r *registry) Create(url, formatID string) types.DownloadJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	job := &types.DownloadJob{
		ID:        uuid.New().String(),
		URL:       url,
		FormatID:  formatID,
		Status:    types.JobStatusStarting,
		Percent:   0,
		CreatedAt: time.Now(),
	}

	r.jobs[job.ID] = job
	return *job
}

// Get retrieves a snapshot of a job by ID.
func (r *registry) Get(id string) (types.DownloadJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, exists := r.jobs[id]
	if !exists {
		return types.DownloadJob{}, false
	}
	return *job, true
}

// List returns snapshots of all jobs.
func (r *registry) List() []types.DownloadJob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	jobs := make([]types.DownloadJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// SetProgress records a progress callback. The first call moves the job from
// starting to downloading. Percent is clamped so it never regresses.
func (r *registry) SetProgress(id string, percent float64, speed, eta string) (types.DownloadJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[id]
	if !exists {
		log.Printf("registry: progress update for unknown job %s", id)
		return types.DownloadJob{}, false
	}
	if job.Status.Terminal() {
		log.Printf("registry: rejected progress update on %s job %s", job.Status, id)
		return *job, false
	}

	job.Status = types.JobStatusDownloading
	if percent > 100 {
		percent = 100
	}
	if percent > job.Percent {
		job.Percent = percent
	}
	job.Speed = speed
	job.ETA = eta

	return *job, true
}

// SetFinished moves a job to its successful terminal state.
func (r *registry) SetFinished(id, filename string) (types.DownloadJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[id]
	if !exists {
		log.Printf("registry: finish for unknown job %s", id)
		return types.DownloadJob{}, false
	}
	if job.Status.Terminal() {
		log.Printf("registry: rejected finish on %s job %s", job.Status, id)
		return *job, false
	}

	now := time.Now()
	job.Status = types.JobStatusFinished
	job.Percent = 100
	job.Speed = ""
	job.ETA = ""
	job.Filename = filename
	job.CompletedAt = &now

	return *job, true
}

// SetError moves a job to its failed terminal state.
func (r *registry) SetError(id, reason string) (types.DownloadJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, exists := r.jobs[id]
	if !exists {
		log.Printf("registry: error for unknown job %s", id)
		return types.DownloadJob{}, false
	}
	if job.Status.Terminal() {
		log.Printf("registry: rejected error transition on %s job %s", job.Status, id)
		return *job, false
	}

	now := time.Now()
	job.Status = types.JobStatusError
	job.Speed = ""
	job.ETA = ""
	job.Error = reason
	job.CompletedAt = &now

	return *job, true
}
