package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

func TestUserResolver_FetchesOncePerRun(t *testing.T) {
	platform := &fakePlatform{
		userFn: func(userID string) (*entity.User, error) {
			return &entity.User{ID: userID, RealName: "Alice", Updated: 10}, nil
		},
	}
	resolver := NewUserResolver(platform, newFakeUserRepo(), nopLogger{})
	ctx := context.Background()

	first := resolver.GetUser(ctx, "U1")
	second := resolver.GetUser(ctx, "U1")

	require.NotNil(t, first)
	assert.Equal(t, "Alice", first.RealName)
	assert.Same(t, first, second)
	assert.Equal(t, []string{"U1"}, platform.userCalls)
}

func TestUserResolver_EmptyID(t *testing.T) {
	platform := &fakePlatform{}
	resolver := NewUserResolver(platform, newFakeUserRepo(), nopLogger{})

	assert.Nil(t, resolver.GetUser(context.Background(), ""))
	assert.Empty(t, platform.userCalls)
}

func TestUserResolver_DoesNotRetryFailedFetch(t *testing.T) {
	platform := &fakePlatform{
		userFn: func(userID string) (*entity.User, error) {
			return nil, errors.New("user_not_found")
		},
	}
	resolver := NewUserResolver(platform, newFakeUserRepo(), nopLogger{})
	ctx := context.Background()

	assert.Nil(t, resolver.GetUser(ctx, "U1"))
	assert.Nil(t, resolver.GetUser(ctx, "U1"))
	assert.Equal(t, []string{"U1"}, platform.userCalls)
}

func TestUserResolver_SyncsOncePerRun(t *testing.T) {
	users := newFakeUserRepo()
	resolver := NewUserResolver(&fakePlatform{}, users, nopLogger{})
	ctx := context.Background()

	profile := resolver.GetUser(ctx, "U1")
	require.NotNil(t, profile)

	require.NoError(t, resolver.SyncUser(ctx, profile))
	require.NoError(t, resolver.SyncUser(ctx, profile))

	assert.Equal(t, 1, users.upserts)
}

func TestUserResolver_RetriesSyncAfterStoreFailure(t *testing.T) {
	users := newFakeUserRepo()
	users.err = errors.New("disk full")

	resolver := NewUserResolver(&fakePlatform{}, users, nopLogger{})
	ctx := context.Background()

	profile := resolver.GetUser(ctx, "U1")
	require.NotNil(t, profile)

	require.Error(t, resolver.SyncUser(ctx, profile))

	// A failed persist is not marked synced; the next attempt hits the store.
	users.err = nil
	require.NoError(t, resolver.SyncUser(ctx, profile))
	assert.Equal(t, 2, users.upserts)
}
