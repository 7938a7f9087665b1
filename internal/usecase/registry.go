package usecase

import (
	"context"
	"sync"
	"time"

	"CoinPager/internal/domain/models"
)

// JobRegistry tracks export jobs by id. The running job mutates its entry
// through Update; status readers get copies. Terminal entries are evicted
// after a retention period, and the registry is capped with oldest-first
// eviction so it never grows without bound.
type JobRegistry struct {
	mu        sync.Mutex
	jobs      map[string]*jobEntry
	order     []string // insertion order, oldest first
	retention time.Duration
	maxJobs   int
	now       func() time.Time
}

type jobEntry struct {
	state  models.ExportJob
	cancel context.CancelFunc
}

// RegistryOption configures a JobRegistry.
type RegistryOption func(*JobRegistry)

// NewJobRegistry creates a registry. Defaults: 1 hour retention, 100 jobs.
func NewJobRegistry(opts ...RegistryOption) *JobRegistry {
	r := &JobRegistry{
		jobs:      make(map[string]*jobEntry),
		retention: time.Hour,
		maxJobs:   100,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithRetention sets how long terminal entries stay queryable.
func WithRetention(d time.Duration) RegistryOption {
	return func(r *JobRegistry) {
		r.retention = d
	}
}

// WithMaxJobs caps the registry size.
func WithMaxJobs(n int) RegistryOption {
	return func(r *JobRegistry) {
		r.maxJobs = n
	}
}

// WithRegistryClock overrides the clock (tests).
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *JobRegistry) {
		r.now = now
	}
}

// Add inserts a new job with its cancellation hook, evicting expired and
// excess entries first.
func (r *JobRegistry) Add(job models.ExportJob, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()
	r.jobs[job.JobID] = &jobEntry{state: job, cancel: cancel}
	r.order = append(r.order, job.JobID)
}

// Get returns a snapshot of the job's state.
func (r *JobRegistry) Get(jobID string) (models.ExportJob, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[jobID]
	if !ok {
		return models.ExportJob{}, false
	}
	return e.state, true
}

// Update applies fn to the job's state under the lock. Only the running
// job calls this for its own entry.
func (r *JobRegistry) Update(jobID string, fn func(*models.ExportJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.jobs[jobID]; ok {
		fn(&e.state)
	}
}

// Cancel fires the job's cancellation hook. It reports whether the id was
// known and not yet terminal.
func (r *JobRegistry) Cancel(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[jobID]
	if !ok || e.state.Status.Terminal() {
		return false
	}
	if e.cancel != nil {
		e.cancel()
	}
	return true
}

// CancelActive cancels the most recently submitted non-terminal job and
// returns its id.
func (r *JobRegistry) CancelActive() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		e, ok := r.jobs[r.order[i]]
		if !ok || e.state.Status.Terminal() {
			continue
		}
		if e.cancel != nil {
			e.cancel()
		}
		return e.state.JobID, true
	}
	return "", false
}

// HasActive reports whether any job is queued or running.
func (r *JobRegistry) HasActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.jobs {
		if !e.state.Status.Terminal() {
			return true
		}
	}
	return false
}

// evictLocked drops terminal entries past retention, then trims oldest
// entries down to the cap. Non-terminal entries survive the cap trim.
func (r *JobRegistry) evictLocked() {
	cutoff := r.now().Add(-r.retention)

	keep := r.order[:0]
	for _, id := range r.order {
		e, ok := r.jobs[id]
		if !ok {
			continue
		}
		if e.state.Status.Terminal() && e.state.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			continue
		}
		keep = append(keep, id)
	}
	r.order = keep

	for len(r.order) >= r.maxJobs {
		evicted := false
		for i, id := range r.order {
			e, ok := r.jobs[id]
			if ok && !e.state.Status.Terminal() {
				continue
			}
			delete(r.jobs, id)
			r.order = append(r.order[:i], r.order[i+1:]...)
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
}
