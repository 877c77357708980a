package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

// Metrics holds all application metrics.
// Implements the archive.MetricsRecorder interface.
type Metrics struct {
	meter metric.Meter

	// Sync run metrics
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	MessagesTotal   metric.Int64Counter
	RepliesTotal    metric.Int64Counter
	ChannelsTotal   metric.Int64Counter
	FetchPagesTotal metric.Int64Counter

	// Error metrics
	FetchErrorsTotal metric.Int64Counter
	StoreErrorsTotal metric.Int64Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	m.RunsTotal, err = meter.Int64Counter(
		"sync.runs.total",
		metric.WithDescription("Total number of sync runs by terminal status"),
		metric.WithUnit("{runs}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sync_runs_total: %w", err)
	}

	m.RunDuration, err = meter.Float64Histogram(
		"sync.run.duration",
		metric.WithDescription("Sync run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sync_run_duration: %w", err)
	}

	m.MessagesTotal, err = meter.Int64Counter(
		"sync.messages.archived.total",
		metric.WithDescription("Total number of top-level messages archived"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating messages_archived_total: %w", err)
	}

	m.RepliesTotal, err = meter.Int64Counter(
		"sync.replies.archived.total",
		metric.WithDescription("Total number of thread replies archived"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating replies_archived_total: %w", err)
	}

	m.ChannelsTotal, err = meter.Int64Counter(
		"sync.channels.total",
		metric.WithDescription("Total number of channels seen by access class"),
		metric.WithUnit("{channels}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating channels_total: %w", err)
	}

	m.FetchPagesTotal, err = meter.Int64Counter(
		"sync.fetch.pages.total",
		metric.WithDescription("Total number of paginated fetch requests by kind"),
		metric.WithUnit("{pages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch_pages_total: %w", err)
	}

	m.FetchErrorsTotal, err = meter.Int64Counter(
		"sync.fetch.errors.total",
		metric.WithDescription("Total number of aborted pagination loops"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fetch_errors_total: %w", err)
	}

	m.StoreErrorsTotal, err = meter.Int64Counter(
		"sync.store.errors.total",
		metric.WithDescription("Total number of failed message upserts"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating store_errors_total: %w", err)
	}

	return m, nil
}

// RecordPage counts one fetched page, kind is "history" or "replies".
func (m *Metrics) RecordPage(ctx context.Context, kind string) {
	m.FetchPagesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordChannel counts one channel access resolution by class.
func (m *Metrics) RecordChannel(ctx context.Context, access string) {
	m.ChannelsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("access", access)))
}

// RecordFetchError counts one aborted pagination loop.
func (m *Metrics) RecordFetchError(ctx context.Context) {
	m.FetchErrorsTotal.Add(ctx, 1)
}

// RecordStoreError counts one failed message upsert.
func (m *Metrics) RecordStoreError(ctx context.Context) {
	m.StoreErrorsTotal.Add(ctx, 1)
}

// RecordRun records a finished run with its terminal status.
func (m *Metrics) RecordRun(ctx context.Context, status string, totals entity.RunTotals, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
	m.MessagesTotal.Add(ctx, int64(totals.Messages))
	m.RepliesTotal.Add(ctx, int64(totals.Replies))
}
