package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// RunLedger records sync-run lifecycle and exposes the last completed run.
// A run that cannot be recorded at start aborts the whole sync; ledger read
// failures are non-fatal and fall back to initial-sync mode.
type RunLedger struct {
	runs   repository.SyncRunRepository
	logger Logger
	now    func() time.Time
}

// NewRunLedger creates a run ledger backed by the given repository.
func NewRunLedger(runs repository.SyncRunRepository, logger Logger) *RunLedger {
	return &RunLedger{
		runs:   runs,
		logger: logger,
		now:    time.Now,
	}
}

// RecordStart persists a new run row in the running state.
// A failure here is fatal to the run: without a ledger row the run cannot be
// tracked at all.
func (l *RunLedger) RecordStart(ctx context.Context) (*entity.SyncRun, error) {
	run := entity.NewSyncRun(l.now())
	if err := l.runs.InsertStart(ctx, run); err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}

	l.logger.Info("sync run started", "run_id", run.ID, "started_at", run.StartedAt)
	return run, nil
}

// RecordCompletion finalizes the run as completed with its totals.
func (l *RunLedger) RecordCompletion(ctx context.Context, run *entity.SyncRun, totals entity.RunTotals) error {
	run.Complete(l.now(), totals)
	if err := l.runs.Finalize(ctx, run); err != nil {
		return fmt.Errorf("recording run completion: %w", err)
	}

	l.logger.Info("sync run completed",
		"run_id", run.ID,
		"messages", totals.Messages,
		"replies", totals.Replies,
		"channels", totals.Channels,
	)
	return nil
}

// RecordFailure finalizes the run as failed, best effort. If the ledger write
// itself fails the row stays in its last recorded state, which is excluded
// from LastSuccessfulRun lookups either way.
func (l *RunLedger) RecordFailure(ctx context.Context, run *entity.SyncRun) {
	run.Fail(l.now())
	if err := l.runs.Finalize(ctx, run); err != nil {
		l.logger.Error("failed to record run failure", "run_id", run.ID, "error", err)
	}
}

// LastSuccessfulRun returns the most recently completed run, or nil when no
// prior run exists or the ledger cannot be read. The nil case makes the
// caller fall back to an initial full sync.
func (l *RunLedger) LastSuccessfulRun(ctx context.Context) *entity.SyncRun {
	run, err := l.runs.LastCompleted(ctx)
	if err != nil {
		l.logger.Warn("failed to read last completed run, assuming initial sync", "error", err)
		return nil
	}
	return run
}
