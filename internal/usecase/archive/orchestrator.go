package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// Orchestrator drives one sync run end to end: it records the run in the
// ledger, plans the windows once, iterates channels sequentially and
// finalizes the run record with aggregate totals.
//
// Channels, pages and windows are processed strictly one at a time. That
// keeps the per-run user cache trivially consistent and the whole run inside
// a single fixed rate-limit budget.
type Orchestrator struct {
	platform Platform
	ledger   *RunLedger
	planner  *Planner
	syncer   *ChannelSyncer
	users    repository.UserRepository
	allow    []string
	logger   Logger
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewOrchestrator creates the top-level sync driver.
// allow is an optional channel allow-list (names or IDs); empty syncs all.
func NewOrchestrator(
	platform Platform,
	ledger *RunLedger,
	planner *Planner,
	syncer *ChannelSyncer,
	users repository.UserRepository,
	allow []string,
	logger Logger,
	metrics MetricsRecorder,
) *Orchestrator {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &Orchestrator{
		platform: platform,
		ledger:   ledger,
		planner:  planner,
		syncer:   syncer,
		users:    users,
		allow:    allow,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Run executes one sync run. A non-nil error means a top-level abort: the
// run could not be started, channels could not be listed, or the completed
// run could not be finalized. Per-channel failures are skips, not errors.
func (o *Orchestrator) Run(ctx context.Context) (*entity.SyncRun, error) {
	started := o.now()

	run, err := o.ledger.RecordStart(ctx)
	if err != nil {
		return nil, err
	}

	plan := o.planner.Prepare(ctx)

	channels, err := o.platform.ListChannels(ctx)
	if err != nil {
		o.ledger.RecordFailure(ctx, run)
		o.metrics.RecordRun(ctx, string(entity.RunStatusFailed), entity.RunTotals{}, o.now().Sub(started))
		return run, fmt.Errorf("listing channels: %w", err)
	}
	o.logger.Info("channels listed", "count", len(channels))

	// The resolver cache lives exactly as long as this run.
	resolver := NewUserResolver(o.platform, o.users, o.logger)

	var totals entity.RunTotals
	for _, ch := range channels {
		if ctx.Err() != nil {
			break
		}
		if !o.wantChannel(ch) {
			o.logger.Debug("channel not in allow-list", "channel", ch.Name)
			continue
		}

		windows := o.planner.WindowsFor(ctx, plan, ch.ID)
		counts, processed := o.syncer.Sync(ctx, ch, windows, resolver)
		if !processed {
			continue
		}

		totals.Messages += counts.Messages
		totals.Replies += counts.Replies
		totals.Channels++
	}

	// An interrupted run must never finalize as completed: the next run would
	// anchor on it and the unswept range would never be backfilled.
	if err := ctx.Err(); err != nil {
		cleanup := context.WithoutCancel(ctx)
		o.ledger.RecordFailure(cleanup, run)
		o.metrics.RecordRun(cleanup, string(entity.RunStatusFailed), totals, o.now().Sub(started))
		return run, fmt.Errorf("sync interrupted: %w", err)
	}

	if err := o.ledger.RecordCompletion(ctx, run, totals); err != nil {
		o.metrics.RecordRun(ctx, string(entity.RunStatusFailed), totals, o.now().Sub(started))
		return run, err
	}

	o.metrics.RecordRun(ctx, string(entity.RunStatusCompleted), totals, o.now().Sub(started))
	return run, nil
}

// wantChannel applies the optional allow-list by name or ID.
func (o *Orchestrator) wantChannel(ch entity.Channel) bool {
	if len(o.allow) == 0 {
		return true
	}
	for _, want := range o.allow {
		if want == ch.Name || want == ch.ID {
			return true
		}
	}
	return false
}
