// Package pacing drives campaign execution: it computes the inter-trade
// delay schedule and runs trade-pairs strictly one at a time, or delegates
// the whole campaign to the remote bot service and tracks it by polling.
package pacing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"solana-volume-bot/internal/botapi"
	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/executor"
	"solana-volume-bot/internal/observability"
	"solana-volume-bot/internal/progress"
	"solana-volume-bot/internal/storage"
)

// Engine lifecycle errors.
var (
	ErrAlreadyStarted    = errors.New("engine already started")
	ErrExecutorRequired  = errors.New("local pacing modes require a trade executor")
	ErrBotClientRequired = errors.New("TRENDING mode requires a bot service client")
)

// Engine owns one CampaignRun from start to terminal state. One Engine per
// campaign; Start a second campaign with a second Engine.
//
// The run is mutated only through the progress reducer under the engine's
// lock. Display layers read copies via Snapshot and control the run only
// through Start and Stop.
type Engine struct {
	exec         executor.TradeExecutor
	bot          *botapi.Client
	feedURL      string
	pollInterval time.Duration
	logger       *log.Logger
	metrics      *observability.Metrics
	store        storage.RunStore

	// Injectable for tests.
	rnd   func() float64
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
	newID func() string

	mu      sync.Mutex
	run     domain.CampaignRun
	started bool
	stopped bool
	// jobID is the remote service's job ID, set once submission succeeds.
	// Empty until then: Stop has no remote job to cancel before that point.
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}
}

// Options configures an Engine.
type Options struct {
	// Executor runs individual trade legs. Required for BOOST, BUMP and
	// ADVANCED modes.
	Executor executor.TradeExecutor

	// Bot is the remote service client. Required for TRENDING mode, used by
	// Stop to cancel a delegated job.
	Bot *botapi.Client

	// FeedURL, when set, streams remote progress over WebSocket instead of
	// polling. Polling remains the fallback when the feed cannot connect.
	FeedURL string

	// PollInterval overrides the remote progress poll cadence.
	PollInterval time.Duration

	Logger  *log.Logger
	Metrics *observability.Metrics

	// Store, when set, receives run snapshots after every state change.
	Store storage.RunStore

	// Rand returns uniform values in [0,1). Defaults to math/rand.
	Rand func() float64
	// Now defaults to time.Now.
	Now func() time.Time
	// After defaults to time.After. Tests inject an immediate timer.
	After func(time.Duration) <-chan time.Time
	// NewID defaults to uuid.NewString.
	NewID func() string
}

// NewEngine creates an engine.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.Float64
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	after := opts.After
	if after == nil {
		after = time.After
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Engine{
		exec:         opts.Executor,
		bot:          opts.Bot,
		feedURL:      opts.FeedURL,
		pollInterval: opts.PollInterval,
		logger:       logger,
		metrics:      opts.Metrics,
		store:        opts.Store,
		rnd:          rnd,
		now:          now,
		after:        after,
		newID:        newID,
		done:         make(chan struct{}),
	}
}

// Start begins the campaign. It returns immediately with the initial run
// snapshot; execution continues in the background until completion, error,
// or Stop. A second Start on the same engine returns ErrAlreadyStarted.
func (e *Engine) Start(ctx context.Context, cfg domain.CampaignConfig) (domain.CampaignRun, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return e.run.Clone(), ErrAlreadyStarted
	}

	remote := cfg.Mode == domain.ModeTrending
	if remote && e.bot == nil {
		return domain.CampaignRun{}, ErrBotClientRequired
	}
	if !remote && e.exec == nil {
		return domain.CampaignRun{}, ErrExecutorRequired
	}

	var schedule []time.Duration
	if !remote {
		var err error
		schedule, err = ComputeSchedule(cfg, e.rnd)
		if err != nil {
			return domain.CampaignRun{}, err
		}
	}

	e.run = domain.CampaignRun{
		ID:                        e.newID(),
		Config:                    cfg,
		Status:                    domain.StatusRunning,
		EstimatedRemainingMinutes: float64(cfg.DurationMinutes),
	}
	e.started = true

	runCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	if e.store != nil {
		if err := e.store.Insert(ctx, &e.run); err != nil {
			e.logger.Printf("Store insert failed for run %s: %v", e.run.ID, err)
		}
	}

	if remote {
		go e.runRemote(runCtx)
	} else {
		go e.runLocal(runCtx, schedule)
	}

	return e.run.Clone(), nil
}

// Stop ends the campaign. Idempotent: the pending delay timer is cancelled,
// no further operation is scheduled, and the run transitions to Completed
// unless already terminal. An operation already awaiting a network response
// resolves asynchronously without blocking this call.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	cancel := e.cancel
	remote := e.run.Config.Mode == domain.ModeTrending
	jobID := e.jobID
	if !e.run.Status.Terminal() {
		e.run.Status = domain.StatusCompleted
		e.run.EstimatedRemainingMinutes = 0
	}
	e.mu.Unlock()

	cancel()

	// A submission still in flight has no job ID yet; runRemote notices the
	// stopped flag once it learns the real ID and cancels the job itself.
	if remote && e.bot != nil && jobID != "" {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), botapi.DefaultTimeout)
		defer stopCancel()
		if _, err := e.bot.StopBot(stopCtx, jobID); err != nil {
			e.logger.Printf("Remote stop failed for job %s: %v", jobID, err)
		}
	}

	e.syncStore()
}

// Snapshot returns a read-only copy of the run's current state.
func (e *Engine) Snapshot() domain.CampaignRun {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.Clone()
}

// Done is closed when the engine's background work has finished. Valid after
// Start.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// runLocal drives the sequential trade loop: delay, then one trade-pair,
// fully resolved before the next operation is scheduled.
func (e *Engine) runLocal(ctx context.Context, schedule []time.Duration) {
	defer close(e.done)

	cfg := e.snapshotConfig()
	e.logger.Printf("Campaign %s started: mode=%s trades=%d window=%dm", e.runID(), cfg.Mode, cfg.TradeCount, cfg.DurationMinutes)

	for k, delay := range schedule {
		select {
		case <-ctx.Done():
			e.finish(domain.StatusCompleted, "")
			return
		case <-e.after(delay):
		}
		// Cancellation may race the timer.
		if ctx.Err() != nil {
			e.finish(domain.StatusCompleted, "")
			return
		}

		e.executePair(ctx, cfg, k)
	}

	e.finish(domain.StatusCompleted, "")
	e.logger.Printf("Campaign %s completed", e.runID())
}

// executePair runs one buy/sell pair. A failed buy leg abandons the pair:
// the matching sell leg is skipped and the pair is counted failed. The
// campaign continues either way.
func (e *Engine) executePair(ctx context.Context, cfg domain.CampaignConfig, k int) {
	amount := cfg.TradeSizeSOL

	buyLeg := e.pendingLeg(domain.DirectionBuy, amount)
	e.apply(progress.LegStarted{Entry: buyLeg})
	buy := e.exec.ExecuteTrade(ctx, cfg, domain.DirectionBuy, amount)
	e.observeLeg(domain.DirectionBuy, buy)

	if !buy.Success {
		e.logger.Printf("Operation %d buy leg failed, skipping sell leg: %s", k+1, buy.ErrorDetail)
		e.apply(progress.TradeOutcome{
			Entry:            e.resolveLeg(buyLeg, buy),
			CompletesPair:    true,
			PairSuccess:      false,
			RemainingMinutes: e.remainingAfter(cfg, k+1),
		})
		return
	}

	e.apply(progress.TradeOutcome{
		Entry:            e.resolveLeg(buyLeg, buy),
		VolumeSOL:        amount,
		RemainingMinutes: -1,
	})

	sellLeg := e.pendingLeg(domain.DirectionSell, amount)
	e.apply(progress.LegStarted{Entry: sellLeg})
	sell := e.exec.ExecuteTrade(ctx, cfg, domain.DirectionSell, amount)
	e.observeLeg(domain.DirectionSell, sell)
	if !sell.Success {
		e.logger.Printf("Operation %d sell leg failed: %s", k+1, sell.ErrorDetail)
	}

	var sellVolume float64
	if sell.Success {
		sellVolume = amount
	}
	e.apply(progress.TradeOutcome{
		Entry:            e.resolveLeg(sellLeg, sell),
		CompletesPair:    true,
		PairSuccess:      sell.Success,
		VolumeSOL:        sellVolume,
		RemainingMinutes: e.remainingAfter(cfg, k+1),
	})
}

// runRemote submits the campaign as a remote job and folds polled snapshots
// into the run until the job turns terminal.
func (e *Engine) runRemote(ctx context.Context) {
	defer close(e.done)

	cfg := e.snapshotConfig()

	resp, err := e.bot.StartVolumeBot(ctx, botapi.StartRequestFromConfig(cfg))
	if err != nil {
		e.finish(domain.StatusError, fmt.Sprintf("submit job: %v", err))
		return
	}

	e.mu.Lock()
	localID := e.run.ID
	e.run.ID = resp.JobID
	e.jobID = resp.JobID
	stopped := e.stopped
	e.mu.Unlock()
	if e.store != nil && localID != resp.JobID {
		// The run is re-keyed under the service's job ID.
		if err := e.store.Delete(context.Background(), localID); err != nil {
			e.logger.Printf("Store delete failed for run %s: %v", localID, err)
		}
	}
	e.syncStore()

	if stopped {
		// Stop ran before the job ID was known, so it skipped the remote
		// cancel. The job exists under the service's ID; cancel it here.
		stopCtx, stopCancel := context.WithTimeout(context.Background(), botapi.DefaultTimeout)
		defer stopCancel()
		if _, err := e.bot.StopBot(stopCtx, resp.JobID); err != nil {
			e.logger.Printf("Remote stop failed for job %s: %v", resp.JobID, err)
		}
		e.finish(domain.StatusCompleted, "")
		return
	}

	e.logger.Printf("Campaign delegated to job %s (estimated %gh, ~$%.0f volume)", resp.JobID, resp.EstimatedDurationHours, resp.EstimatedVolumeUSD)
	if e.metrics != nil {
		e.metrics.JobsSubmitted.Inc()
	}

	snaps, cleanup := e.progressStream(ctx, resp.JobID)
	defer cleanup()

	for snap := range snaps {
		// An update that raced Stop must not schedule further work.
		if ctx.Err() != nil {
			break
		}
		e.apply(progress.RemoteProgress{Snapshot: snap})
	}

	e.finish(domain.StatusCompleted, "")
}

// progressStream returns the remote snapshot source: the WebSocket feed when
// configured and reachable, the poller otherwise.
func (e *Engine) progressStream(ctx context.Context, jobID string) (<-chan *botapi.ProgressSnapshot, func()) {
	if e.feedURL != "" {
		feed, err := botapi.NewProgressFeed(ctx, e.feedURL, nil, e.logger)
		if err == nil {
			ch, subErr := feed.Subscribe(ctx, jobID)
			if subErr == nil {
				return ch, func() { _ = feed.Close() }
			}
			_ = feed.Close()
			err = subErr
		}
		e.logger.Printf("Progress feed unavailable, falling back to polling: %v", err)
	}

	poller := botapi.NewPoller(botapi.PollerOptions{
		Client:   e.bot,
		Interval: e.pollInterval,
		Logger:   e.logger,
		Metrics:  e.metrics,
	})
	return poller.Run(ctx, jobID), func() {}
}

// apply advances the run through the progress reducer.
func (e *Engine) apply(ev progress.Event) {
	e.mu.Lock()
	e.run = progress.Apply(e.run, ev)
	e.mu.Unlock()
	e.syncStore()
}

// finish moves the run to a terminal status unless it already is terminal.
func (e *Engine) finish(status domain.RunStatus, detail string) {
	e.mu.Lock()
	if !e.run.Status.Terminal() {
		e.run.Status = status
		e.run.EstimatedRemainingMinutes = 0
		if detail != "" {
			e.run.ErrorDetail = detail
		}
	}
	e.mu.Unlock()
	e.syncStore()
}

// pendingLeg creates the log entry for a leg about to execute.
func (e *Engine) pendingLeg(direction domain.TradeDirection, amount float64) domain.TradeLogEntry {
	return domain.TradeLogEntry{
		ID:          e.newID(),
		TimestampMs: e.now().UnixMilli(),
		Direction:   direction,
		AmountSOL:   amount,
		Status:      domain.TradePending,
	}
}

// resolveLeg returns the entry moved to its terminal status.
func (e *Engine) resolveLeg(entry domain.TradeLogEntry, res executor.TradeResult) domain.TradeLogEntry {
	entry.TimestampMs = e.now().UnixMilli()
	entry.Status = domain.TradeSuccess
	if !res.Success {
		entry.Status = domain.TradeFailed
	}
	entry.TxSignature = res.TxSignature
	entry.ErrorDetail = res.ErrorDetail
	return entry
}

func (e *Engine) observeLeg(direction domain.TradeDirection, res executor.TradeResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveTradeLeg(string(direction), res.Success)
	if res.Success {
		e.metrics.AddVolume(e.snapshotConfig().TradeSizeSOL)
	}
}

// remainingAfter estimates minutes left once `completed` pairs have resolved.
func (e *Engine) remainingAfter(cfg domain.CampaignConfig, completed int) float64 {
	if cfg.TradeCount == 0 {
		return 0
	}
	left := cfg.TradeCount - completed
	if left < 0 {
		left = 0
	}
	return float64(cfg.DurationMinutes) * float64(left) / float64(cfg.TradeCount)
}

func (e *Engine) snapshotConfig() domain.CampaignConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.Config
}

func (e *Engine) runID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run.ID
}

func (e *Engine) syncStore() {
	if e.store == nil {
		return
	}
	snap := e.Snapshot()
	if err := e.store.UpdateSnapshot(context.Background(), &snap); err != nil {
		e.logger.Printf("Store update failed for run %s: %v", snap.ID, err)
	}
}
