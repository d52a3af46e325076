package botapi

import (
	"context"
	"log"
	"time"

	"solana-volume-bot/internal/observability"
)

// DefaultPollInterval is how often job progress is fetched.
const DefaultPollInterval = 5 * time.Second

// Poller drives fixed-interval progress polling for one remote job.
//
// A failed poll is ignorable noise: it is logged and the poller simply waits
// for the next tick. Polling stops exactly once, when the remote status turns
// terminal or the context is cancelled.
type Poller struct {
	client   *Client
	interval time.Duration
	logger   *log.Logger
	metrics  *observability.Metrics
}

// PollerOptions configures a Poller.
type PollerOptions struct {
	Client   *Client
	Interval time.Duration // default DefaultPollInterval
	Logger   *log.Logger
	Metrics  *observability.Metrics
}

// NewPoller creates a poller.
func NewPoller(opts PollerOptions) *Poller {
	interval := opts.Interval
	if interval == 0 {
		interval = DefaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		client:   opts.Client,
		interval: interval,
		logger:   logger,
		metrics:  opts.Metrics,
	}
}

// Run polls jobID until the remote status is terminal or ctx is cancelled.
// Snapshots are delivered on the returned channel, which is closed when
// polling stops. The terminal snapshot is always delivered before close.
func (p *Poller) Run(ctx context.Context, jobID string) <-chan *ProgressSnapshot {
	out := make(chan *ProgressSnapshot)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			snap, err := p.client.JobProgress(ctx, jobID)
			if err != nil {
				// Transient poll failure: wait for the next tick.
				p.logger.Printf("Poll failed for job %s: %v", jobID, err)
				if p.metrics != nil {
					p.metrics.PollFailures.Inc()
				}
				continue
			}

			select {
			case out <- snap:
			case <-ctx.Done():
				return
			}

			if snap.Status.Terminal() {
				return
			}
		}
	}()

	return out
}
