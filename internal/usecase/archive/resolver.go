package archive

import (
	"context"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// userEntry is one cached profile lookup. A nil profile records a failed
// remote fetch so the same user is not retried within the run.
type userEntry struct {
	profile  *entity.User
	dbSynced bool
}

// UserResolver caches user profile lookups for the duration of one run and
// persists profiles at most once per user per run. It is constructed fresh by
// the orchestrator at run start and never shared across runs; the sequential
// processing model means no locking is needed.
type UserResolver struct {
	platform Platform
	users    repository.UserRepository
	cache    map[string]*userEntry
	logger   Logger
}

// NewUserResolver creates a resolver with an empty per-run cache.
func NewUserResolver(platform Platform, users repository.UserRepository, logger Logger) *UserResolver {
	return &UserResolver{
		platform: platform,
		users:    users,
		cache:    make(map[string]*userEntry),
		logger:   logger,
	}
}

// GetUser returns the user's profile, fetching it from the platform on first
// reference. Returns nil when the ID is empty or the fetch failed; failures
// are logged and not retried within the run.
func (r *UserResolver) GetUser(ctx context.Context, userID string) *entity.User {
	if userID == "" {
		return nil
	}
	if entry, ok := r.cache[userID]; ok {
		return entry.profile
	}

	profile, err := r.platform.FetchUserProfile(ctx, userID)
	if err != nil {
		r.logger.Warn("failed to fetch user profile", "user_id", userID, "error", err)
		r.cache[userID] = &userEntry{}
		return nil
	}

	r.cache[userID] = &userEntry{profile: profile}
	return profile
}

// SyncUser persists the profile unless it was already synced this run.
// The store applies the write conditionally: an existing record is only
// overwritten when the incoming Updated counter is strictly greater, so a
// stale cached copy can never clobber newer persisted data.
func (r *UserResolver) SyncUser(ctx context.Context, profile *entity.User) error {
	entry, ok := r.cache[profile.ID]
	if !ok {
		entry = &userEntry{profile: profile}
		r.cache[profile.ID] = entry
	}
	if entry.dbSynced {
		return nil
	}

	if err := r.users.Upsert(ctx, profile); err != nil {
		return err
	}

	entry.dbSynced = true
	return nil
}
