package archive

import (
	"context"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// Counts aggregates the messages and thread replies processed for a channel.
type Counts struct {
	Messages int
	Replies  int
}

// ChannelSyncer applies a set of time windows to one channel: access
// classification, history fetch, thread expansion, and persistence.
// Per-channel failures never abort the run; the channel is skipped and
// contributes zero to the totals.
type ChannelSyncer struct {
	platform Platform
	fetcher  *Fetcher
	messages repository.MessageRepository
	logger   Logger
	metrics  MetricsRecorder
}

// NewChannelSyncer creates a channel syncer.
func NewChannelSyncer(platform Platform, fetcher *Fetcher, messages repository.MessageRepository, logger Logger, metrics MetricsRecorder) *ChannelSyncer {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &ChannelSyncer{
		platform: platform,
		fetcher:  fetcher,
		messages: messages,
		logger:   logger,
		metrics:  metrics,
	}
}

// Sync runs the plan's windows against one channel in order.
// Returns the per-channel counts and whether the channel was processed at
// all; inaccessible channels return zero counts and false.
func (s *ChannelSyncer) Sync(ctx context.Context, ch entity.Channel, windows []Window, users *UserResolver) (Counts, bool) {
	access := s.resolveAccess(ctx, ch)
	s.metrics.RecordChannel(ctx, access.String())

	if !access.CanFetch() {
		s.logger.Warn("skipping channel",
			"channel", ch.Name,
			"channel_id", ch.ID,
			"access", access.String(),
		)
		return Counts{}, false
	}

	var counts Counts
	for _, window := range windows {
		s.logger.Info("syncing window",
			"channel", ch.Name,
			"window", string(window.Kind),
			"from", window.From,
			"to", window.To,
		)
		s.syncWindow(ctx, ch, window, users, &counts)
	}

	s.logArchiveSpan(ctx, ch)
	return counts, true
}

// resolveAccess classifies the channel before any fetch is attempted.
// Private channels the bot is not in cannot be self-joined and need a manual
// invite; membership known from the listing skips the join call.
func (s *ChannelSyncer) resolveAccess(ctx context.Context, ch entity.Channel) entity.ChannelAccess {
	if ch.IsMember {
		return entity.AccessAlreadyMember
	}
	if ch.IsPrivate {
		return entity.AccessPrivateManual
	}

	access, err := s.platform.JoinChannel(ctx, ch.ID)
	if err != nil {
		s.logger.Error("join attempt failed", "channel", ch.Name, "error", err)
		return entity.AccessDenied
	}
	return access
}

// syncWindow drains one window's pagination. A fetch failure aborts this
// window only; everything persisted before the failure stays archived.
func (s *ChannelSyncer) syncWindow(ctx context.Context, ch entity.Channel, window Window, users *UserResolver, counts *Counts) {
	for msg, err := range s.fetcher.Messages(ctx, ch.ID, window) {
		if err != nil {
			s.metrics.RecordFetchError(ctx)
			s.logger.Error("history fetch aborted",
				"channel", ch.Name,
				"window", string(window.Kind),
				"error", err,
			)
			return
		}

		if !s.persist(ctx, ch, msg, users) {
			continue
		}
		counts.Messages++

		if msg.IsThreadParent() {
			s.expandThread(ctx, ch, msg.TS, users, counts)
		}
	}
}

// expandThread fetches and persists the replies of one thread.
func (s *ChannelSyncer) expandThread(ctx context.Context, ch entity.Channel, parentTS string, users *UserResolver, counts *Counts) {
	for msg, err := range s.fetcher.ThreadReplies(ctx, ch.ID, parentTS) {
		if err != nil {
			s.metrics.RecordFetchError(ctx)
			s.logger.Error("thread fetch aborted",
				"channel", ch.Name,
				"parent_ts", parentTS,
				"error", err,
			)
			return
		}

		if s.persist(ctx, ch, msg, users) {
			counts.Replies++
		}
	}
}

// persist resolves the author, stamps the channel name and upserts the
// message. A failed upsert is logged and skipped; the message is simply not
// counted as archived for this run.
func (s *ChannelSyncer) persist(ctx context.Context, ch entity.Channel, msg *entity.Message, users *UserResolver) bool {
	msg.ChannelID = ch.ID
	msg.ChannelName = ch.Name

	if profile := users.GetUser(ctx, msg.UserID); profile != nil {
		msg.Username = profile.BestName()
		if err := users.SyncUser(ctx, profile); err != nil {
			s.logger.Warn("failed to persist user", "user_id", profile.ID, "error", err)
		}
	}

	if err := s.messages.Upsert(ctx, msg); err != nil {
		s.metrics.RecordStoreError(ctx)
		s.logger.Error("failed to archive message",
			"channel", ch.Name,
			"ts", msg.TS,
			"error", err,
		)
		return false
	}
	return true
}

// logArchiveSpan reports the archived range for the channel after a sync.
func (s *ChannelSyncer) logArchiveSpan(ctx context.Context, ch entity.Channel) {
	oldest, err := s.messages.OldestTimestamp(ctx, ch.ID)
	if err != nil {
		return
	}
	latest, err := s.messages.LatestTimestamp(ctx, ch.ID)
	if err != nil {
		return
	}
	count, err := s.messages.CountByChannel(ctx, ch.ID)
	if err != nil {
		return
	}

	s.logger.Debug("archive span",
		"channel", ch.Name,
		"oldest", oldest,
		"latest", latest,
		"archived_messages", count,
	)
}
