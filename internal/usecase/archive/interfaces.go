package archive

import (
	"context"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// Platform defines the contract for the remote messaging platform.
// Implementations classify access errors into entity.ChannelAccess at this
// boundary so that nothing downstream matches on raw error strings.
type Platform interface {
	// ListChannels returns all channels visible to the bot.
	ListChannels(ctx context.Context) ([]entity.Channel, error)

	// JoinChannel attempts to join a channel and classifies the outcome.
	// The returned access class is valid whenever err is nil; transport
	// failures are returned as errors.
	JoinChannel(ctx context.Context, channelID string) (entity.ChannelAccess, error)

	// FetchHistory retrieves one page of channel history.
	FetchHistory(ctx context.Context, req HistoryRequest) (*Page, error)

	// FetchReplies retrieves one page of a message thread.
	// The parent message is included by the platform; callers filter it.
	FetchReplies(ctx context.Context, req RepliesRequest) (*Page, error)

	// FetchUserProfile retrieves a user profile by ID.
	FetchUserProfile(ctx context.Context, userID string) (*entity.User, error)
}

// HistoryRequest parameterizes one channel-history page fetch.
type HistoryRequest struct {
	ChannelID string

	// Oldest bounds the range from below, exclusive. Zero means unbounded.
	Oldest time.Time

	// Latest bounds the range from above, exclusive. Zero means unbounded.
	Latest time.Time

	// Cursor continues a previous page, empty for the first page.
	Cursor string

	// Limit is the maximum number of messages per page.
	Limit int
}

// RepliesRequest parameterizes one thread-replies page fetch.
type RepliesRequest struct {
	ChannelID string
	ParentTS  string
	Cursor    string
	Limit     int
}

// Page is one page of fetched messages.
type Page struct {
	Messages   []*entity.Message
	HasMore    bool
	NextCursor string
}

// Logger defines the contract for logging within use cases.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// MetricsRecorder receives sync progress measurements.
type MetricsRecorder interface {
	// RecordPage counts one fetched page, kind is "history" or "replies".
	RecordPage(ctx context.Context, kind string)

	// RecordChannel counts one channel access resolution by class.
	RecordChannel(ctx context.Context, access string)

	// RecordFetchError counts one aborted pagination loop.
	RecordFetchError(ctx context.Context)

	// RecordStoreError counts one failed message upsert.
	RecordStoreError(ctx context.Context)

	// RecordRun records a finished run with its terminal status.
	RecordRun(ctx context.Context, status string, totals entity.RunTotals, duration time.Duration)
}

// NopMetrics is a MetricsRecorder that discards all measurements.
type NopMetrics struct{}

func (NopMetrics) RecordPage(context.Context, string)    {}
func (NopMetrics) RecordChannel(context.Context, string) {}
func (NopMetrics) RecordFetchError(context.Context)      {}
func (NopMetrics) RecordStoreError(context.Context)      {}
func (NopMetrics) RecordRun(context.Context, string, entity.RunTotals, time.Duration) {
}
