// Package executor defines the trade execution boundary. A TradeExecutor
// performs one trade leg; failures are absorbed into the result and never
// escalate out of the pacing loop.
package executor

import (
	"context"

	"solana-volume-bot/internal/domain"
)

// TradeResult is the outcome of one trade leg.
type TradeResult struct {
	Success     bool
	TxSignature string // set on success
	ErrorDetail string // set on failure
	TimedOut    bool   // failure was a confirmation/transport timeout
}

// TradeExecutor executes a single trade leg against the target token.
// Implementations must bound their own waits; a call returns when the leg
// has resolved or its deadline passed.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, cfg domain.CampaignConfig, direction domain.TradeDirection, amountSOL float64) TradeResult
}
