package repository

import (
	"context"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// MessageRepository defines the contract for message persistence.
// All writes are idempotent upserts keyed on (channel ID, timestamp).
type MessageRepository interface {
	// Upsert inserts the message or, when the (channel, ts) key already
	// exists, replaces the stored field values. Applying the same message
	// repeatedly converges to the latest-applied values without
	// duplicating rows.
	Upsert(ctx context.Context, msg *entity.Message) error

	// FindByKey retrieves a message by its composite key.
	// Returns nil, nil if not found. The sync pipeline writes blindly and
	// never calls this; it exists for inspection tooling and for verifying
	// upsert convergence against each backend.
	FindByKey(ctx context.Context, channelID, ts string) (*entity.Message, error)

	// LatestTimestamp returns the newest archived message time for a
	// channel. Returns the zero time if the channel has no messages.
	LatestTimestamp(ctx context.Context, channelID string) (time.Time, error)

	// OldestTimestamp returns the oldest archived message time for a
	// channel. Returns the zero time if the channel has no messages.
	OldestTimestamp(ctx context.Context, channelID string) (time.Time, error)

	// CountByChannel returns the number of archived messages for a channel.
	CountByChannel(ctx context.Context, channelID string) (int, error)
}

// UserRepository defines the contract for user persistence.
type UserRepository interface {
	// Get retrieves a user by Slack ID.
	// Returns nil, nil if not found. The sync pipeline relies on Upsert's
	// counter guard instead of read-before-write; Get exists for inspection
	// tooling and for verifying the guard against each backend.
	Get(ctx context.Context, id string) (*entity.User, error)

	// Upsert inserts the user or conditionally updates the stored record.
	// The update is applied only when the incoming Updated counter is
	// strictly greater than the stored one; the check and the write are a
	// single store-level operation, safe under concurrent runs.
	Upsert(ctx context.Context, user *entity.User) error
}

// SyncRunRepository defines the contract for the run ledger.
type SyncRunRepository interface {
	// InsertStart persists a new run row in the running state.
	InsertStart(ctx context.Context, run *entity.SyncRun) error

	// Finalize records a run's terminal state, completion time and totals.
	// Returns ErrNotFound if the run row does not exist.
	Finalize(ctx context.Context, run *entity.SyncRun) error

	// LastCompleted returns the most recently completed run, ordered by
	// start time. Runs left in the running or failed state are never
	// returned. Returns nil, nil if no run has ever completed.
	LastCompleted(ctx context.Context) (*entity.SyncRun, error)
}
