package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

func setupRunRepo(t *testing.T) (*SyncRunRepository, func()) {
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

	return NewSyncRunRepository(db), func() { db.Close() }
}

func TestSyncRunRepository_InsertStart(t *testing.T) {
	repo, cleanup := setupRunRepo(t)
	defer cleanup()

	ctx := context.Background()
	run := entity.NewSyncRun(time.Now())

	if err := repo.InsertStart(ctx, run); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	// A running run is not yet an anchor
	last, err := repo.LastCompleted(ctx)
	if err != nil {
		t.Fatalf("failed to query last completed: %v", err)
	}
	if last != nil {
		t.Errorf("expected no completed run, got %+v", last)
	}
}

func TestSyncRunRepository_Finalize(t *testing.T) {
	repo, cleanup := setupRunRepo(t)
	defer cleanup()

	ctx := context.Background()
	started := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	run := entity.NewSyncRun(started)

	if err := repo.InsertStart(ctx, run); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	totals := entity.RunTotals{Messages: 42, Replies: 7, Channels: 3}
	run.Complete(started.Add(10*time.Minute), totals)
	if err := repo.Finalize(ctx, run); err != nil {
		t.Fatalf("failed to finalize run: %v", err)
	}

	last, err := repo.LastCompleted(ctx)
	if err != nil {
		t.Fatalf("failed to query last completed: %v", err)
	}
	if last == nil {
		t.Fatal("expected completed run, got nil")
	}
	if last.ID != run.ID {
		t.Errorf("expected run ID %s, got %s", run.ID, last.ID)
	}
	if !last.StartedAt.Equal(started) {
		t.Errorf("expected started at %v, got %v", started, last.StartedAt)
	}
	if last.CompletedAt == nil {
		t.Error("expected completed at to be set")
	}
	if last.Totals != totals {
		t.Errorf("expected totals %+v, got %+v", totals, last.Totals)
	}
}

func TestSyncRunRepository_Finalize_NotFound(t *testing.T) {
	repo, cleanup := setupRunRepo(t)
	defer cleanup()

	run := entity.NewSyncRun(time.Now())
	run.Fail(time.Now())

	err := repo.Finalize(context.Background(), run)
	if err != repository.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncRunRepository_LastCompleted_IgnoresFailedRuns(t *testing.T) {
	repo, cleanup := setupRunRepo(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	completed := entity.NewSyncRun(base)
	if err := repo.InsertStart(ctx, completed); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}
	completed.Complete(base.Add(time.Minute), entity.RunTotals{Messages: 1})
	if err := repo.Finalize(ctx, completed); err != nil {
		t.Fatalf("failed to finalize run: %v", err)
	}

	// A later failed run must not shadow the completed one
	failed := entity.NewSyncRun(base.Add(time.Hour))
	if err := repo.InsertStart(ctx, failed); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}
	failed.Fail(base.Add(time.Hour + time.Minute))
	if err := repo.Finalize(ctx, failed); err != nil {
		t.Fatalf("failed to finalize run: %v", err)
	}

	last, err := repo.LastCompleted(ctx)
	if err != nil {
		t.Fatalf("failed to query last completed: %v", err)
	}
	if last == nil {
		t.Fatal("expected completed run, got nil")
	}
	if last.ID != completed.ID {
		t.Errorf("expected run %s, got %s", completed.ID, last.ID)
	}
}

func TestSyncRunRepository_LastCompleted_PicksLatest(t *testing.T) {
	repo, cleanup := setupRunRepo(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	var newest *entity.SyncRun
	for i := 0; i < 3; i++ {
		run := entity.NewSyncRun(base.Add(time.Duration(i) * time.Hour))
		if err := repo.InsertStart(ctx, run); err != nil {
			t.Fatalf("failed to insert run: %v", err)
		}
		run.Complete(run.StartedAt.Add(time.Minute), entity.RunTotals{})
		if err := repo.Finalize(ctx, run); err != nil {
			t.Fatalf("failed to finalize run: %v", err)
		}
		newest = run
	}

	last, err := repo.LastCompleted(ctx)
	if err != nil {
		t.Fatalf("failed to query last completed: %v", err)
	}
	if last == nil || last.ID != newest.ID {
		t.Errorf("expected most recent run %s, got %+v", newest.ID, last)
	}
}
