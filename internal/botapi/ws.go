package botapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// FeedConfig configures ProgressFeed behavior.
type FeedConfig struct {
	// ReconnectDelay is the initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is the maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is the timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// ProgressFeed is a push alternative to Poller: it subscribes to a job's
// progress stream over WebSocket and delivers the same snapshots. On
// connection loss it reconnects with backoff and resubscribes; polling
// consumers and feed consumers share one channel contract.
type ProgressFeed struct {
	endpoint string
	config   FeedConfig
	logger   *log.Logger

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// subscribeMsg is the subscription frame sent after connecting.
type subscribeMsg struct {
	Action string `json:"action"`
	JobID  string `json:"job_id"`
}

// NewProgressFeed connects to the service's WebSocket endpoint.
func NewProgressFeed(ctx context.Context, endpoint string, config *FeedConfig, logger *log.Logger) (*ProgressFeed, error) {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	f := &ProgressFeed{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		done:     make(chan struct{}),
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}
	return f, nil
}

// connect establishes the WebSocket connection.
func (f *ProgressFeed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	f.conn = conn
	return nil
}

// Subscribe starts streaming snapshots for jobID. The returned channel is
// closed when the job reaches a terminal status, the context is cancelled,
// or the feed is closed.
func (f *ProgressFeed) Subscribe(ctx context.Context, jobID string) (<-chan *ProgressSnapshot, error) {
	if f.closed.Load() {
		return nil, fmt.Errorf("feed closed")
	}

	if err := f.writeSubscribe(jobID); err != nil {
		return nil, err
	}

	out := make(chan *ProgressSnapshot)
	f.wg.Add(1)
	go f.readLoop(ctx, jobID, out)
	return out, nil
}

func (f *ProgressFeed) writeSubscribe(jobID string) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
	if err := f.conn.WriteJSON(subscribeMsg{Action: "subscribe", JobID: jobID}); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}
	return nil
}

// readLoop reads snapshots until terminal status, cancellation, or close.
// Read errors trigger reconnect-and-resubscribe with exponential backoff.
func (f *ProgressFeed) readLoop(ctx context.Context, jobID string, out chan<- *ProgressSnapshot) {
	defer f.wg.Done()
	defer close(out)

	delay := f.config.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.done:
			return
		default:
		}

		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}
			f.logger.Printf("Progress feed read error: %v, reconnecting in %v", err, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			case <-f.done:
				return
			}
			delay *= 2
			if delay > f.config.MaxReconnectDelay {
				delay = f.config.MaxReconnectDelay
			}
			if err := f.connect(ctx); err != nil {
				f.logger.Printf("Progress feed reconnect failed: %v", err)
				continue
			}
			if err := f.writeSubscribe(jobID); err != nil {
				f.logger.Printf("Progress feed resubscribe failed: %v", err)
			}
			continue
		}
		delay = f.config.ReconnectDelay

		var snap ProgressSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			f.logger.Printf("Progress feed decode error: %v", err)
			continue
		}
		if snap.JobID != jobID {
			continue
		}

		select {
		case out <- &snap:
		case <-ctx.Done():
			return
		case <-f.done:
			return
		}

		if snap.Status.Terminal() {
			return
		}
	}
}

// Close shuts down the feed. Safe to call multiple times.
func (f *ProgressFeed) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(f.done)

	f.connMu.Lock()
	err := f.conn.Close()
	f.connMu.Unlock()

	f.wg.Wait()
	return err
}
