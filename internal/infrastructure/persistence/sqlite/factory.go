package sqlite

// Repositories holds all SQLite repository implementations.
type Repositories struct {
	Messages *MessageRepository
	Users    *UserRepository
	Runs     *SyncRunRepository
}

// NewRepositories creates all SQLite repositories with a shared database connection.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Messages: NewMessageRepository(db),
		Users:    NewUserRepository(db),
		Runs:     NewSyncRunRepository(db),
	}
}
