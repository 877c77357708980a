package archive

import (
	"context"
	"time"

	"github.com/jkopstals/slack-keeper/internal/domain/repository"
)

// WindowKind labels a time window by its role in the sync plan.
type WindowKind string

const (
	// WindowFull is the single open-ended window of an initial sync.
	WindowFull WindowKind = "full"

	// WindowRecheck re-scans recent history to catch late edits and
	// thread replies on already-archived messages.
	WindowRecheck WindowKind = "recheck"

	// WindowNew covers messages posted since the last run.
	WindowNew WindowKind = "new"
)

// Window is a half-open time range [From, To) to fetch for a channel.
// A zero To leaves the range open-ended.
type Window struct {
	Kind WindowKind
	From time.Time
	To   time.Time
}

// Plan fixes the run mode and anchor times for one sync run.
// It is computed once per run; per-channel windows derive from it.
type Plan struct {
	// Initial is true when no prior successful run exists.
	Initial bool

	// HorizonStart bounds the initial full sync, now - FULL_SYNC_DAYS.
	HorizonStart time.Time

	// AnchorStart is the previous successful run's start time. Anchoring
	// on start rather than completion keeps events that occurred during
	// the previous run's own execution inside this run's coverage.
	AnchorStart time.Time

	// RecheckFrom is AnchorStart minus the recheck buffer.
	RecheckFrom time.Time
}

// Planner computes the recheck and new-message time ranges from the last
// successful run and configuration.
type Planner struct {
	ledger   *RunLedger
	messages repository.MessageRepository
	buffer   time.Duration
	horizon  time.Duration
	logger   Logger
	now      func() time.Time
}

// NewPlanner creates a window planner.
// buffer is the recheck width; horizon bounds the initial full sync.
func NewPlanner(ledger *RunLedger, messages repository.MessageRepository, buffer, horizon time.Duration, logger Logger) *Planner {
	return &Planner{
		ledger:   ledger,
		messages: messages,
		buffer:   buffer,
		horizon:  horizon,
		logger:   logger,
		now:      time.Now,
	}
}

// Prepare selects the run mode from the ledger. Called once per run.
func (p *Planner) Prepare(ctx context.Context) *Plan {
	last := p.ledger.LastSuccessfulRun(ctx)
	if last == nil {
		start := p.now().Add(-p.horizon).UTC()
		p.logger.Info("no prior successful run, planning initial sync", "horizon_start", start)
		return &Plan{Initial: true, HorizonStart: start}
	}

	plan := &Plan{
		AnchorStart: last.StartedAt,
		RecheckFrom: last.StartedAt.Add(-p.buffer),
	}
	p.logger.Info("planning incremental sync",
		"last_run_id", last.ID,
		"anchor_start", plan.AnchorStart,
		"recheck_from", plan.RecheckFrom,
	)
	return plan
}

// WindowsFor derives the ordered window list for one channel.
//
// Initial plan: one open-ended window from the horizon start.
// Incremental plan: a bounded recheck window [AnchorStart-buffer, AnchorStart)
// followed by an open-ended new window starting at the later of the channel's
// latest archived message and AnchorStart. The recheck window is emitted only
// when its start precedes the anchor, guarding against a zero-width window.
func (p *Planner) WindowsFor(ctx context.Context, plan *Plan, channelID string) []Window {
	if plan.Initial {
		return []Window{{Kind: WindowFull, From: plan.HorizonStart}}
	}

	var windows []Window
	if plan.RecheckFrom.Before(plan.AnchorStart) {
		windows = append(windows, Window{
			Kind: WindowRecheck,
			From: plan.RecheckFrom,
			To:   plan.AnchorStart,
		})
	}

	from := plan.AnchorStart
	latest, err := p.messages.LatestTimestamp(ctx, channelID)
	if err != nil {
		p.logger.Warn("failed to read latest archived timestamp, using run anchor",
			"channel_id", channelID,
			"error", err,
		)
	} else if latest.After(from) {
		from = latest
	}

	return append(windows, Window{Kind: WindowNew, From: from})
}
