package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// MessageRepository provides MySQL implementation of repository.MessageRepository.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MySQL-backed message repository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Upsert inserts the message or replaces the stored field values when the
// (channel_id, ts) key already exists.
func (r *MessageRepository) Upsert(ctx context.Context, msg *entity.Message) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (
			channel_id, ts, channel_name, user_id, username, text,
			thread_ts, edited_ts, reply_count, raw, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			channel_name = VALUES(channel_name),
			user_id = VALUES(user_id),
			username = VALUES(username),
			text = VALUES(text),
			thread_ts = VALUES(thread_ts),
			edited_ts = VALUES(edited_ts),
			reply_count = VALUES(reply_count),
			raw = VALUES(raw),
			archived_at = VALUES(archived_at)
	`,
		msg.ChannelID, msg.TS, msg.ChannelName, msg.UserID, msg.Username, msg.Text,
		nullString(msg.ThreadTS), nullString(msg.EditedTS), msg.ReplyCount,
		nullString(string(msg.Raw)), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert message: %w", err)
	}
	return nil
}

// FindByKey retrieves a message by its composite key.
// Returns nil, nil if not found.
func (r *MessageRepository) FindByKey(ctx context.Context, channelID, ts string) (*entity.Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT channel_id, ts, channel_name, user_id, username, text,
			thread_ts, edited_ts, reply_count, raw
		FROM messages WHERE channel_id = ? AND ts = ?
	`, channelID, ts)

	var (
		msg      entity.Message
		threadTS sql.NullString
		editedTS sql.NullString
		raw      sql.NullString
	)
	err := row.Scan(
		&msg.ChannelID, &msg.TS, &msg.ChannelName, &msg.UserID, &msg.Username,
		&msg.Text, &threadTS, &editedTS, &msg.ReplyCount, &raw,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}

	msg.ThreadTS = stringFromNull(threadTS)
	msg.EditedTS = stringFromNull(editedTS)
	if raw.Valid {
		msg.Raw = json.RawMessage(raw.String)
	}

	return &msg, nil
}

// LatestTimestamp returns the newest archived message time for a channel.
func (r *MessageRepository) LatestTimestamp(ctx context.Context, channelID string) (time.Time, error) {
	return r.boundaryTimestamp(ctx, channelID, "DESC")
}

// OldestTimestamp returns the oldest archived message time for a channel.
func (r *MessageRepository) OldestTimestamp(ctx context.Context, channelID string) (time.Time, error) {
	return r.boundaryTimestamp(ctx, channelID, "ASC")
}

func (r *MessageRepository) boundaryTimestamp(ctx context.Context, channelID, order string) (time.Time, error) {
	// Slack timestamps sort numerically, not lexicographically.
	query := fmt.Sprintf(`
		SELECT ts FROM messages WHERE channel_id = ?
		ORDER BY CAST(ts AS DECIMAL(20,6)) %s LIMIT 1
	`, order)

	var ts string
	err := r.db.QueryRowContext(ctx, query, channelID).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query boundary timestamp: %w", err)
	}

	t, err := entity.ParseTS(ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp: %w", err)
	}
	return t, nil
}

// CountByChannel returns the number of archived messages for a channel.
func (r *MessageRepository) CountByChannel(ctx context.Context, channelID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE channel_id = ?`, channelID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
