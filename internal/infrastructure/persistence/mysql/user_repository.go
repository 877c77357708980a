package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// UserRepository provides MySQL implementation of repository.UserRepository.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new MySQL-backed user repository.
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

// Upsert inserts the user or conditionally updates the stored record.
// Each column assignment is guarded by the updated-counter comparison and the
// updated column itself is assigned last, so the guard reads the old value
// throughout. The whole check-and-write is one atomic statement.
func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, team_id, name, real_name, display_name, email,
			deleted, is_bot, is_admin, is_owner, updated, raw, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			team_id = IF(VALUES(updated) > updated, VALUES(team_id), team_id),
			name = IF(VALUES(updated) > updated, VALUES(name), name),
			real_name = IF(VALUES(updated) > updated, VALUES(real_name), real_name),
			display_name = IF(VALUES(updated) > updated, VALUES(display_name), display_name),
			email = IF(VALUES(updated) > updated, VALUES(email), email),
			deleted = IF(VALUES(updated) > updated, VALUES(deleted), deleted),
			is_bot = IF(VALUES(updated) > updated, VALUES(is_bot), is_bot),
			is_admin = IF(VALUES(updated) > updated, VALUES(is_admin), is_admin),
			is_owner = IF(VALUES(updated) > updated, VALUES(is_owner), is_owner),
			raw = IF(VALUES(updated) > updated, VALUES(raw), raw),
			archived_at = IF(VALUES(updated) > updated, VALUES(archived_at), archived_at),
			updated = IF(VALUES(updated) > updated, VALUES(updated), updated)
	`,
		user.ID, user.TeamID, user.Name, user.RealName, user.DisplayName, user.Email,
		user.Deleted, user.IsBot, user.IsAdmin, user.IsOwner, user.Updated,
		nullString(string(user.Raw)), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}
