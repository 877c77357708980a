package mysql

import (
	"context"
	"fmt"

	"github.com/jkopstals/slack-keeper/internal/infrastructure/config"
)

// Repositories holds all MySQL repository implementations.
type Repositories struct {
	Messages *MessageRepository
	Users    *UserRepository
	Runs     *SyncRunRepository
}

// NewRepositories creates all MySQL repository implementations.
// It establishes a database connection, runs migrations, and returns all repositories.
func NewRepositories(cfg *config.MySQLConfig) (*Repositories, *DB, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("mysql config is required")
	}

	db, err := NewDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating database connection: %w", err)
	}

	migrator := NewMigrator(db.DB)
	if err := migrator.Up(context.Background()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	repos := &Repositories{
		Messages: NewMessageRepository(db),
		Users:    NewUserRepository(db),
		Runs:     NewSyncRunRepository(db),
	}

	return repos, db, nil
}
