package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrator creates the slack-keeper schema on MySQL.
type Migrator struct {
	db *sql.DB
}

// NewMigrator creates a migrator for the given connection.
func NewMigrator(db *sql.DB) *Migrator {
	return &Migrator{db: db}
}

// Up applies the schema. Statements are idempotent so repeated runs are safe.
func (m *Migrator) Up(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			channel_id   VARCHAR(32)  NOT NULL,
			ts           VARCHAR(32)  NOT NULL,
			channel_name VARCHAR(255) NOT NULL DEFAULT '',
			user_id      VARCHAR(32)  NOT NULL DEFAULT '',
			username     VARCHAR(255) NOT NULL DEFAULT '',
			text         TEXT         NOT NULL,
			thread_ts    VARCHAR(32)  NULL,
			edited_ts    VARCHAR(32)  NULL,
			reply_count  INT          NOT NULL DEFAULT 0,
			raw          JSON         NULL,
			archived_at  DATETIME     NOT NULL,
			PRIMARY KEY (channel_id, ts),
			KEY idx_messages_thread (channel_id, thread_ts)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS users (
			id           VARCHAR(32)  NOT NULL,
			team_id      VARCHAR(32)  NOT NULL DEFAULT '',
			name         VARCHAR(255) NOT NULL DEFAULT '',
			real_name    VARCHAR(255) NOT NULL DEFAULT '',
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			email        VARCHAR(255) NOT NULL DEFAULT '',
			deleted      TINYINT(1)   NOT NULL DEFAULT 0,
			is_bot       TINYINT(1)   NOT NULL DEFAULT 0,
			is_admin     TINYINT(1)   NOT NULL DEFAULT 0,
			is_owner     TINYINT(1)   NOT NULL DEFAULT 0,
			updated      BIGINT       NOT NULL DEFAULT 0,
			raw          JSON         NULL,
			archived_at  DATETIME     NOT NULL,
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS sync_runs (
			id             VARCHAR(36) NOT NULL,
			started_at     DATETIME    NOT NULL,
			completed_at   DATETIME    NULL,
			status         VARCHAR(16) NOT NULL,
			total_messages INT         NOT NULL DEFAULT 0,
			total_replies  INT         NOT NULL DEFAULT 0,
			total_channels INT         NOT NULL DEFAULT 0,
			PRIMARY KEY (id),
			KEY idx_sync_runs_status_started (status, started_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}
	return nil
}
