package memory

import (
	"context"
	"sync"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// UserRepository provides an in-memory implementation of repository.UserRepository.
// Thread-safe for concurrent access.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*entity.User
}

// NewUserRepository creates a new in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]*entity.User),
	}
}

// Get retrieves a user by Slack ID.
func (r *UserRepository) Get(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	userCopy := *user
	return &userCopy, nil
}

// Upsert inserts the user, or updates the stored record only when the
// incoming Updated counter is strictly greater. The check and the write
// happen under one lock, matching the store-level conditional update of the
// SQL backends.
func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.users[user.ID]; ok && existing.Updated >= user.Updated {
		return nil
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	return nil
}
