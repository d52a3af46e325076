package pacing

import (
	"errors"
	"time"

	"solana-volume-bot/internal/domain"
)

// Jitter bounds for BOOST and BUMP pacing. Each scheduled operation draws a
// fresh factor so the cadence reads organic rather than metronomic.
const (
	JitterMin = 0.8
	JitterMax = 1.2
)

// Schedule computation errors.
var (
	ErrNoLocalSchedule   = errors.New("mode has no local delay schedule")
	ErrMissingDelayRange = errors.New("ADVANCED mode requires a delay range")
)

// BoostBaseMs is the pre-jitter delay for BOOST mode: trades are packed into
// roughly half the nominal window for a front-loaded spike.
func BoostBaseMs(durationMinutes, tradeCount int) float64 {
	return float64(durationMinutes) * 60000 / float64(tradeCount*2)
}

// BumpBaseMs is the pre-jitter delay for BUMP mode: trades are spread evenly
// across the full window.
func BumpBaseMs(durationMinutes, tradeCount int) float64 {
	return float64(durationMinutes) * 60000 / float64(tradeCount)
}

// ApplyJitter scales base by a factor in [JitterMin, JitterMax]. u must be
// uniform in [0,1).
func ApplyJitter(baseMs, u float64) float64 {
	return baseMs * (JitterMin + (JitterMax-JitterMin)*u)
}

// AdvancedDelayMs draws a delay uniformly from the configured range.
// u must be uniform in [0,1).
func AdvancedDelayMs(r domain.DelayRange, u float64) float64 {
	minMs := float64(r.MinSeconds) * 1000
	maxMs := float64(r.MaxSeconds) * 1000
	return minMs + (maxMs-minMs)*u
}

// ComputeSchedule returns the per-operation delay schedule for a config,
// one delay per trade-pair, drawn with rnd (uniform [0,1) per call).
// TRENDING mode has no local schedule: execution is delegated to the remote
// service and ErrNoLocalSchedule is returned.
func ComputeSchedule(cfg domain.CampaignConfig, rnd func() float64) ([]time.Duration, error) {
	switch cfg.Mode {
	case domain.ModeBoost, domain.ModeBump:
		base := BumpBaseMs(cfg.DurationMinutes, cfg.TradeCount)
		if cfg.Mode == domain.ModeBoost {
			base = BoostBaseMs(cfg.DurationMinutes, cfg.TradeCount)
		}
		delays := make([]time.Duration, cfg.TradeCount)
		for i := range delays {
			delays[i] = time.Duration(ApplyJitter(base, rnd())) * time.Millisecond
		}
		return delays, nil

	case domain.ModeAdvanced:
		if cfg.AdvancedDelay == nil {
			return nil, ErrMissingDelayRange
		}
		delays := make([]time.Duration, cfg.TradeCount)
		for i := range delays {
			delays[i] = time.Duration(AdvancedDelayMs(*cfg.AdvancedDelay, rnd())) * time.Millisecond
		}
		return delays, nil

	case domain.ModeTrending:
		return nil, ErrNoLocalSchedule

	default:
		return nil, ErrNoLocalSchedule
	}
}
