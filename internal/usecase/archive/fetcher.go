package archive

import (
	"context"
	"iter"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// Fetcher retrieves channel history and thread replies as lazy, single-pass
// message sequences, hiding cursor pagination and rate-limit pacing from the
// caller. A request failure ends the sequence with that error; messages
// yielded before the failure have already been consumed.
type Fetcher struct {
	platform     Platform
	pageSize     int
	pageInterval time.Duration
	logger       Logger
	metrics      MetricsRecorder
}

// NewFetcher creates a fetcher with the given page size and pacing interval.
func NewFetcher(platform Platform, pageSize int, pageInterval time.Duration, logger Logger, metrics MetricsRecorder) *Fetcher {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Fetcher{
		platform:     platform,
		pageSize:     pageSize,
		pageInterval: pageInterval,
		logger:       logger,
		metrics:      metrics,
	}
}

// Messages returns the channel's messages inside the window, oldest bound
// exclusive, paginated in cursor order with a pacing delay between pages.
func (f *Fetcher) Messages(ctx context.Context, channelID string, window Window) iter.Seq2[*entity.Message, error] {
	return func(yield func(*entity.Message, error) bool) {
		cursor := ""
		for {
			page, err := f.platform.FetchHistory(ctx, HistoryRequest{
				ChannelID: channelID,
				Oldest:    window.From,
				Latest:    window.To,
				Cursor:    cursor,
				Limit:     f.pageSize,
			})
			if err != nil {
				yield(nil, err)
				return
			}
			f.metrics.RecordPage(ctx, "history")

			for _, msg := range page.Messages {
				if !yield(msg, nil) {
					return
				}
			}

			if !page.HasMore {
				return
			}
			cursor = page.NextCursor
			if err := f.pace(ctx); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// ThreadReplies returns the replies of the thread rooted at parentTS.
// The parent message itself is filtered out: the caller has already
// persisted it from the history fetch.
func (f *Fetcher) ThreadReplies(ctx context.Context, channelID, parentTS string) iter.Seq2[*entity.Message, error] {
	return func(yield func(*entity.Message, error) bool) {
		cursor := ""
		for {
			page, err := f.platform.FetchReplies(ctx, RepliesRequest{
				ChannelID: channelID,
				ParentTS:  parentTS,
				Cursor:    cursor,
				Limit:     f.pageSize,
			})
			if err != nil {
				yield(nil, err)
				return
			}
			f.metrics.RecordPage(ctx, "replies")

			for _, msg := range page.Messages {
				if msg.TS == parentTS {
					continue
				}
				if !yield(msg, nil) {
					return
				}
			}

			if !page.HasMore {
				return
			}
			cursor = page.NextCursor
			if err := f.pace(ctx); err != nil {
				yield(nil, err)
				return
			}
		}
	}
}

// pace waits the configured interval between pages, honoring cancellation.
func (f *Fetcher) pace(ctx context.Context) error {
	if f.pageInterval <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.pageInterval):
		return nil
	}
}
