// Package progress folds per-trade outcomes and remote progress snapshots
// into campaign run state. Apply is a pure reducer: callers must treat the
// returned run as the new authoritative state.
package progress

import (
	"solana-volume-bot/internal/botapi"
	"solana-volume-bot/internal/domain"
)

// Event is one incoming progress update.
type Event interface {
	isEvent()
}

// LegStarted reports a trade leg entering flight from the local pacing
// loop. The entry is appended Pending and resolved in place by the later
// TradeOutcome carrying the same entry ID.
type LegStarted struct {
	Entry domain.TradeLogEntry
}

func (LegStarted) isEvent() {}

// TradeOutcome reports one resolved trade leg from the local pacing loop.
type TradeOutcome struct {
	// Entry carries the leg's terminal state. A Pending entry already in
	// the log under the same ID is replaced; otherwise Entry is appended.
	Entry domain.TradeLogEntry

	// CompletesPair marks the leg that resolves its buy/sell pair. The pair
	// is the counting unit: counters move only on pair completion.
	CompletesPair bool
	PairSuccess   bool

	VolumeSOL        float64 // volume contributed by this leg
	RemainingMinutes float64 // engine's estimate after this leg
}

func (TradeOutcome) isEvent() {}

// RemoteProgress carries a snapshot polled from the bot service.
type RemoteProgress struct {
	Snapshot *botapi.ProgressSnapshot
}

func (RemoteProgress) isEvent() {}

// Apply returns the run advanced by one event. The input run is not
// mutated. Counters and VolumeGenerated never decrease and
// EstimatedRemainingMinutes never increases while Running; regressive
// remote snapshots are clamped rather than applied.
func Apply(run domain.CampaignRun, ev Event) domain.CampaignRun {
	out := run.Clone()

	switch e := ev.(type) {
	case LegStarted:
		out.TradeLog = append(out.TradeLog, e.Entry)
	case TradeOutcome:
		applyTradeOutcome(&out, e)
	case RemoteProgress:
		applyRemoteProgress(&out, e.Snapshot)
	}

	return out
}

func applyTradeOutcome(run *domain.CampaignRun, e TradeOutcome) {
	resolved := false
	for i := len(run.TradeLog) - 1; i >= 0; i-- {
		if run.TradeLog[i].ID == e.Entry.ID {
			run.TradeLog[i] = e.Entry
			resolved = true
			break
		}
	}
	if !resolved {
		run.TradeLog = append(run.TradeLog, e.Entry)
	}

	if e.VolumeSOL > 0 {
		run.VolumeGenerated += e.VolumeSOL
	}

	if e.CompletesPair && run.CompletedCount < run.Config.TradeCount {
		run.CompletedCount++
		if e.PairSuccess {
			run.SuccessCount++
		} else {
			run.FailureCount++
		}
	}

	if run.Status == domain.StatusRunning && e.RemainingMinutes >= 0 && e.RemainingMinutes < run.EstimatedRemainingMinutes {
		run.EstimatedRemainingMinutes = e.RemainingMinutes
	}
}

func applyRemoteProgress(run *domain.CampaignRun, snap *botapi.ProgressSnapshot) {
	if snap == nil {
		return
	}

	// The service counts makers per pair but transactions per leg, so the
	// transaction totals cannot be copied into the pair counters. Completed
	// pairs come from CompletedMakers, capped at the configured trade count.
	// Each failed transaction abandons at most one pair; every remaining
	// completed pair resolved successfully.
	if c := minInt(snap.CompletedMakers, run.Config.TradeCount); c > run.CompletedCount {
		run.CompletedCount = c
	}
	if f := minInt(snap.Transactions.Failed, run.CompletedCount-run.SuccessCount); f > run.FailureCount {
		run.FailureCount = f
	}
	if s := run.CompletedCount - run.FailureCount; s > run.SuccessCount {
		run.SuccessCount = s
	}

	if snap.GeneratedVolume > run.VolumeGenerated {
		run.VolumeGenerated = snap.GeneratedVolume
	}

	if run.Status == domain.StatusRunning || run.Status == domain.StatusPaused {
		remaining := remainingFromPercentage(run.Config.DurationMinutes, snap.ProgressPercentage)
		if remaining >= 0 && remaining < run.EstimatedRemainingMinutes {
			run.EstimatedRemainingMinutes = remaining
		}
	}

	// Terminal states are absorbing: a late snapshot cannot resurrect a run.
	if !run.Status.Terminal() {
		run.Status = snap.Status.RunStatus()
		if snap.Status == botapi.JobFailed {
			run.ErrorDetail = snap.ErrorMessage
		}
	}

	if run.Status.Terminal() {
		run.EstimatedRemainingMinutes = 0
	}
}

// remainingFromPercentage derives remaining minutes from the remote
// progress percentage. Returns -1 when the percentage is unusable.
func remainingFromPercentage(durationMinutes int, pct float64) float64 {
	if pct < 0 || pct > 100 {
		return -1
	}
	return float64(durationMinutes) * (100 - pct) / 100
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
