package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// UserRepository provides SQLite implementation of repository.UserRepository.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new SQLite-backed user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get retrieves a user by Slack ID.
// Returns nil, nil if not found.
func (r *UserRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, team_id, name, real_name, display_name, email,
			deleted, is_bot, is_admin, is_owner, updated, raw
		FROM users WHERE id = ?
	`, id)

	var (
		user entity.User
		raw  sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.TeamID, &user.Name, &user.RealName, &user.DisplayName,
		&user.Email, &user.Deleted, &user.IsBot, &user.IsAdmin, &user.IsOwner,
		&user.Updated, &raw,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}

	if raw.Valid {
		user.Raw = json.RawMessage(raw.String)
	}
	return &user, nil
}

// Upsert inserts the user or updates the stored record, but only when the
// incoming updated counter is strictly greater than the stored one. The
// condition is part of the statement itself, so the check-and-write is a
// single atomic operation at the store layer.
func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, team_id, name, real_name, display_name, email,
			deleted, is_bot, is_admin, is_owner, updated, raw, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			team_id = excluded.team_id,
			name = excluded.name,
			real_name = excluded.real_name,
			display_name = excluded.display_name,
			email = excluded.email,
			deleted = excluded.deleted,
			is_bot = excluded.is_bot,
			is_admin = excluded.is_admin,
			is_owner = excluded.is_owner,
			updated = excluded.updated,
			raw = excluded.raw,
			archived_at = excluded.archived_at
		WHERE excluded.updated > users.updated
	`,
		user.ID, user.TeamID, user.Name, user.RealName, user.DisplayName, user.Email,
		boolToInt(user.Deleted), boolToInt(user.IsBot), boolToInt(user.IsAdmin),
		boolToInt(user.IsOwner), user.Updated, nullString(string(user.Raw)),
		timeToString(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
