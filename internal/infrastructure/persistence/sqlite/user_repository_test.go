package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

func setupUserRepo(t *testing.T) (*UserRepository, func()) {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		t.Fatalf("failed to migrate: %v", err)
	}

	return NewUserRepository(db), func() { db.Close() }
}

func TestUserRepository_Upsert(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()

	ctx := context.Background()
	user := &entity.User{
		ID:          "U1",
		TeamID:      "T1",
		Name:        "alice",
		RealName:    "Alice Smith",
		DisplayName: "alice",
		Email:       "alice@example.com",
		IsAdmin:     true,
		Updated:     100,
		Raw:         []byte(`{"id":"U1"}`),
	}

	if err := repo.Upsert(ctx, user); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}

	found, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if found == nil {
		t.Fatal("expected to find user, got nil")
	}
	if found.RealName != "Alice Smith" {
		t.Errorf("expected real name Alice Smith, got %s", found.RealName)
	}
	if !found.IsAdmin {
		t.Error("expected admin flag to persist")
	}
	if found.Updated != 100 {
		t.Errorf("expected updated 100, got %d", found.Updated)
	}
}

func TestUserRepository_Upsert_StaleProfileIgnored(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "newer", Updated: 100}); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}

	// An older profile must not overwrite the stored record
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "stale", Updated: 50}); err != nil {
		t.Fatalf("failed to upsert stale user: %v", err)
	}

	found, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if found.Name != "newer" {
		t.Errorf("expected stale write to be ignored, got name %s", found.Name)
	}
}

func TestUserRepository_Upsert_EqualCounterIgnored(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "first", Updated: 100}); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "second", Updated: 100}); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}

	found, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if found.Name != "first" {
		t.Errorf("expected equal counter to be ignored, got name %s", found.Name)
	}
}

func TestUserRepository_Upsert_NewerProfileWins(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()

	ctx := context.Background()
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "old", Updated: 100}); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}
	if err := repo.Upsert(ctx, &entity.User{ID: "U1", Name: "new", Updated: 200}); err != nil {
		t.Fatalf("failed to upsert user: %v", err)
	}

	found, err := repo.Get(ctx, "U1")
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if found.Name != "new" {
		t.Errorf("expected newer profile to win, got name %s", found.Name)
	}
	if found.Updated != 200 {
		t.Errorf("expected updated 200, got %d", found.Updated)
	}
}

func TestUserRepository_Get_NotFound(t *testing.T) {
	repo, cleanup := setupUserRepo(t)
	defer cleanup()

	found, err := repo.Get(context.Background(), "U404")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for missing user, got %+v", found)
	}
}
