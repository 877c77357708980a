package entity

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus describes the lifecycle state of a sync run.
type RunStatus string

const (
	// RunStatusRunning marks a run that has started but not yet finished.
	RunStatusRunning RunStatus = "running"

	// RunStatusCompleted marks a run that finished successfully.
	// Only completed runs anchor the next run's window computation.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusFailed marks a run aborted by a top-level error.
	RunStatusFailed RunStatus = "failed"
)

// RunTotals aggregates the work done by a sync run.
type RunTotals struct {
	// Messages is the number of top-level messages archived.
	Messages int

	// Replies is the number of thread replies archived.
	Replies int

	// Channels is the number of channels processed (skipped channels excluded).
	Channels int
}

// SyncRun is the persisted record of one archiver invocation.
// StartedAt, not CompletedAt, anchors the next run's window math: anything
// posted while a run was executing must still fall inside the next run's
// recheck coverage.
type SyncRun struct {
	// ID is the unique run identifier.
	ID string

	// StartedAt is when the run began.
	StartedAt time.Time

	// CompletedAt is when the run finished, nil while running.
	CompletedAt *time.Time

	// Status is the lifecycle state. Completed and failed are terminal.
	Status RunStatus

	// Totals holds the aggregate counts, populated at completion.
	Totals RunTotals
}

// NewSyncRun creates a run record in the running state.
func NewSyncRun(now time.Time) *SyncRun {
	return &SyncRun{
		ID:        uuid.New().String(),
		StartedAt: now.UTC(),
		Status:    RunStatusRunning,
	}
}

// Complete transitions the run to its terminal completed state.
func (r *SyncRun) Complete(now time.Time, totals RunTotals) {
	t := now.UTC()
	r.CompletedAt = &t
	r.Status = RunStatusCompleted
	r.Totals = totals
}

// Fail transitions the run to its terminal failed state.
func (r *SyncRun) Fail(now time.Time) {
	t := now.UTC()
	r.CompletedAt = &t
	r.Status = RunStatusFailed
}
