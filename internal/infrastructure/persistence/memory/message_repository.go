package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// MessageRepository provides an in-memory implementation of repository.MessageRepository.
// Thread-safe for concurrent access.
type MessageRepository struct {
	mu       sync.RWMutex
	messages map[messageKey]*entity.Message
}

type messageKey struct {
	channelID string
	ts        string
}

// NewMessageRepository creates a new in-memory message repository.
func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		messages: make(map[messageKey]*entity.Message),
	}
}

// Upsert inserts or replaces the message under its composite key.
func (r *MessageRepository) Upsert(ctx context.Context, msg *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to prevent external mutations
	msgCopy := *msg
	r.messages[messageKey{msg.ChannelID, msg.TS}] = &msgCopy
	return nil
}

// FindByKey retrieves a message by its composite key.
func (r *MessageRepository) FindByKey(ctx context.Context, channelID, ts string) (*entity.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.messages[messageKey{channelID, ts}]
	if !ok {
		return nil, nil
	}
	msgCopy := *msg
	return &msgCopy, nil
}

// LatestTimestamp returns the newest archived message time for a channel.
func (r *MessageRepository) LatestTimestamp(ctx context.Context, channelID string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest time.Time
	for key, msg := range r.messages {
		if key.channelID != channelID {
			continue
		}
		if t := msg.Time(); t.After(latest) {
			latest = t
		}
	}
	return latest, nil
}

// OldestTimestamp returns the oldest archived message time for a channel.
func (r *MessageRepository) OldestTimestamp(ctx context.Context, channelID string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var oldest time.Time
	for key, msg := range r.messages {
		if key.channelID != channelID {
			continue
		}
		if t := msg.Time(); oldest.IsZero() || t.Before(oldest) {
			oldest = t
		}
	}
	return oldest, nil
}

// CountByChannel returns the number of archived messages for a channel.
func (r *MessageRepository) CountByChannel(ctx context.Context, channelID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for key := range r.messages {
		if key.channelID == channelID {
			count++
		}
	}
	return count, nil
}
