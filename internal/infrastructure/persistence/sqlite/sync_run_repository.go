package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// SyncRunRepository provides SQLite implementation of repository.SyncRunRepository.
type SyncRunRepository struct {
	db *DB
}

// NewSyncRunRepository creates a new SQLite-backed run ledger repository.
func NewSyncRunRepository(db *DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// InsertStart persists a new run row in the running state.
func (r *SyncRunRepository) InsertStart(ctx context.Context, run *entity.SyncRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, started_at, completed_at, status)
		VALUES (?, ?, ?, ?)
	`,
		run.ID, timeToString(run.StartedAt), nullTime(run.CompletedAt), string(run.Status),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Finalize records a run's terminal state, completion time and totals.
// Returns repository.ErrNotFound if the run row does not exist.
func (r *SyncRunRepository) Finalize(ctx context.Context, run *entity.SyncRun) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sync_runs SET
			completed_at = ?,
			status = ?,
			total_messages = ?,
			total_replies = ?,
			total_channels = ?
		WHERE id = ?
	`,
		nullTime(run.CompletedAt), string(run.Status),
		run.Totals.Messages, run.Totals.Replies, run.Totals.Channels,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// LastCompleted returns the most recently started completed run.
// Returns nil, nil if no run has ever completed.
func (r *SyncRunRepository) LastCompleted(ctx context.Context) (*entity.SyncRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, started_at, completed_at, status,
			total_messages, total_replies, total_channels
		FROM sync_runs
		WHERE status = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, string(entity.RunStatusCompleted))

	var (
		run         entity.SyncRun
		startedAt   string
		completedAt sql.NullString
		status      string
	)
	err := row.Scan(
		&run.ID, &startedAt, &completedAt, &status,
		&run.Totals.Messages, &run.Totals.Replies, &run.Totals.Channels,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	run.Status = entity.RunStatus(status)
	run.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	run.CompletedAt = scanNullTime(completedAt)

	return &run, nil
}
