// Package stub provides a scripted TradeExecutor for tests.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/executor"
)

// Call records one ExecuteTrade invocation.
type Call struct {
	Direction domain.TradeDirection
	AmountSOL float64
}

// Executor returns scripted outcomes in call order. Calls beyond the script
// succeed with a synthetic signature.
type Executor struct {
	mu       sync.Mutex
	outcomes []executor.TradeResult
	calls    []Call
}

// NewExecutor creates a stub with the given scripted outcomes.
func NewExecutor(outcomes ...executor.TradeResult) *Executor {
	return &Executor{outcomes: outcomes}
}

// ExecuteTrade records the call and returns the next scripted outcome.
func (e *Executor) ExecuteTrade(_ context.Context, _ domain.CampaignConfig, direction domain.TradeDirection, amountSOL float64) executor.TradeResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.calls = append(e.calls, Call{Direction: direction, AmountSOL: amountSOL})

	idx := len(e.calls) - 1
	if idx < len(e.outcomes) {
		return e.outcomes[idx]
	}
	return executor.TradeResult{
		Success:     true,
		TxSignature: fmt.Sprintf("stub-sig-%d", idx),
	}
}

// Calls returns a copy of the recorded calls.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Call, len(e.calls))
	copy(out, e.calls)
	return out
}

var _ executor.TradeExecutor = (*Executor)(nil)
