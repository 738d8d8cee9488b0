// Package progress tracks per-job pipeline state. Each job owns its own
// entry in a Tracker; nothing here is process-global.
package progress

import (
	"sync"
	"time"

	"github.com/lingodoc/lingodoc/internal"
)

// Status names a pipeline stage.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusParsing     Status = "parsing"
	StatusExtracting  Status = "extracting"
	StatusTranslating Status = "translating"
	StatusFormatting  Status = "formatting"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Terminal reports whether no further updates are allowed for s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is a point-in-time snapshot of one job.
type State struct {
	JobID     string                     `json:"job_id"`
	Status    Status                     `json:"status"`
	Message   string                     `json:"message"`
	Percent   float64                    `json:"percent"`
	Result    *internal.ProcessingResult `json:"result,omitempty"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// Tracker holds the state of active and recently finished jobs. All
// methods are safe for concurrent use.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[string]State
}

func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[string]State)}
}

// Set records an update for the job. Percent never decreases and is
// clamped to [0, 100]. Once a job reaches a terminal status further
// updates are ignored.
func (t *Tracker) Set(jobID string, status Status, percent float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.jobs[jobID]
	if ok && prev.Status.Terminal() {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if ok && percent < prev.Percent {
		percent = prev.Percent
	}
	t.jobs[jobID] = State{
		JobID:     jobID,
		Status:    status,
		Message:   message,
		Percent:   percent,
		Result:    prev.Result,
		UpdatedAt: time.Now(),
	}
}

// Finish records the terminal state of a job together with its result.
func (t *Tracker) Finish(jobID string, result internal.ProcessingResult) {
	status := StatusCompleted
	if !result.Success {
		status = StatusFailed
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev, ok := t.jobs[jobID]
	if ok && prev.Status.Terminal() {
		return
	}
	percent := 100.0
	if !result.Success && ok {
		percent = prev.Percent
	}
	if !result.Success && !ok {
		percent = 0
	}
	t.jobs[jobID] = State{
		JobID:     jobID,
		Status:    status,
		Message:   result.Error,
		Percent:   percent,
		Result:    &result,
		UpdatedAt: time.Now(),
	}
}

// Get returns a snapshot of the job, or ok=false when it is unknown.
func (t *Tracker) Get(jobID string) (State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	state, ok := t.jobs[jobID]
	return state, ok
}

// Prune drops finished jobs that have not been updated within maxAge.
// Active jobs are never pruned. Returns how many entries were removed.
func (t *Tracker) Prune(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for id, state := range t.jobs {
		if state.Status.Terminal() && state.UpdatedAt.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}
