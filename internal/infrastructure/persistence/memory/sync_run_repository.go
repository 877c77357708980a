package memory

import (
	"context"
	"sync"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// SyncRunRepository provides an in-memory implementation of repository.SyncRunRepository.
// Thread-safe for concurrent access.
type SyncRunRepository struct {
	mu   sync.RWMutex
	runs map[string]*entity.SyncRun
}

// NewSyncRunRepository creates a new in-memory run ledger repository.
func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{
		runs: make(map[string]*entity.SyncRun),
	}
}

// InsertStart persists a new run row.
func (r *SyncRunRepository) InsertStart(ctx context.Context, run *entity.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; exists {
		return repository.ErrAlreadyExists
	}

	runCopy := *run
	r.runs[run.ID] = &runCopy
	return nil
}

// Finalize records a run's terminal state and totals.
func (r *SyncRunRepository) Finalize(ctx context.Context, run *entity.SyncRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.runs[run.ID]; !exists {
		return repository.ErrNotFound
	}

	runCopy := *run
	r.runs[run.ID] = &runCopy
	return nil
}

// LastCompleted returns the most recently started run with completed status.
func (r *SyncRunRepository) LastCompleted(ctx context.Context) (*entity.SyncRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var last *entity.SyncRun
	for _, run := range r.runs {
		if run.Status != entity.RunStatusCompleted {
			continue
		}
		if last == nil || run.StartedAt.After(last.StartedAt) {
			last = run
		}
	}
	if last == nil {
		return nil, nil
	}

	runCopy := *last
	return &runCopy, nil
}
