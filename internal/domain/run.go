package domain

// RunStatus is the lifecycle state of a campaign run.
type RunStatus string

// Run statuses. The local state machine is linear:
// Running → {Completed | Error}. Paused is only ever reported by the remote
// bot service for a delegated job; no local transition produces it.
const (
	StatusRunning   RunStatus = "RUNNING"
	StatusPaused    RunStatus = "PAUSED"
	StatusError     RunStatus = "ERROR"
	StatusCompleted RunStatus = "COMPLETED"
)

// Terminal reports whether the status admits no further transitions.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// DisplayTradeLimit is how many of the most recent trade log entries are
// surfaced for display. The full log is retained.
const DisplayTradeLimit = 10

// CampaignRun is the mutable state of one campaign. It is exclusively owned
// by the pacing engine for the duration of the run; other components receive
// copies via snapshots.
//
// Invariants, maintained by the progress aggregator:
//   - SuccessCount + FailureCount <= CompletedCount <= Config.TradeCount
//   - CompletedCount, SuccessCount, FailureCount, VolumeGenerated never decrease
//   - EstimatedRemainingMinutes never increases while Running
type CampaignRun struct {
	ID     string // locally generated UUID, or remote job_id
	Config CampaignConfig
	Status RunStatus

	CompletedCount int
	SuccessCount   int
	FailureCount   int

	VolumeGenerated           float64 // SOL, monotonically non-decreasing
	EstimatedRemainingMinutes float64

	TradeLog []TradeLogEntry // insertion order = chronological

	ErrorDetail string // set when Status is Error
}

// RecentTrades returns the last n trade log entries, newest last. The
// returned slice is a copy.
func (r *CampaignRun) RecentTrades(n int) []TradeLogEntry {
	if n <= 0 || len(r.TradeLog) == 0 {
		return nil
	}
	start := len(r.TradeLog) - n
	if start < 0 {
		start = 0
	}
	out := make([]TradeLogEntry, len(r.TradeLog)-start)
	copy(out, r.TradeLog[start:])
	return out
}

// Clone returns a deep copy of the run, safe to hand to display layers.
func (r *CampaignRun) Clone() CampaignRun {
	out := *r
	out.TradeLog = make([]TradeLogEntry, len(r.TradeLog))
	copy(out.TradeLog, r.TradeLog)
	if r.Config.AdvancedDelay != nil {
		d := *r.Config.AdvancedDelay
		out.Config.AdvancedDelay = &d
	}
	if r.Config.Trending != nil {
		t := *r.Config.Trending
		t.Platforms = append([]string(nil), r.Config.Trending.Platforms...)
		out.Config.Trending = &t
	}
	return out
}
