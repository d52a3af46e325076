package executor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"solana-volume-bot/internal/domain"
)

// WSOLMint is the wrapped SOL mint, the quote side of every trade-pair.
const WSOLMint = "So11111111111111111111111111111111111111112"

// DefaultConfirmTimeout bounds the wait for broadcast confirmation. After it
// expires the leg is reported failed with a timeout error even if the
// transaction might still land.
const DefaultConfirmTimeout = 30 * time.Second

const lamportsPerSOL = 1_000_000_000

// QuoteRequest asks a swap provider to price one leg.
type QuoteRequest struct {
	InputMint   string
	OutputMint  string
	AmountIn    uint64 // lamports of the input mint
	SlippageBps int
}

// SwapQuote is a priced, buildable swap.
type SwapQuote struct {
	AmountOut     uint64
	UnsignedTx    string // base64 transaction ready to sign
	PriceImpactPc float64
}

// SwapProvider prices swaps and builds unsigned transactions, typically a
// DEX aggregator.
type SwapProvider interface {
	Quote(ctx context.Context, req QuoteRequest) (*SwapQuote, error)
}

// Wallet signs transactions. Key handling is delegated entirely to the
// implementation.
type Wallet interface {
	PublicKey() string
	SignTransaction(unsignedTx string) (string, error)
}

// Broadcaster submits signed transactions and awaits confirmation.
type Broadcaster interface {
	SendTransaction(ctx context.Context, signedTx string) (signature string, err error)
	ConfirmTransaction(ctx context.Context, signature string) error
}

// DirectExecutor runs the quote → sign → broadcast → confirm sequence for
// each trade leg. Each step is independently failable; any failure resolves
// the leg as failed without aborting the campaign.
type DirectExecutor struct {
	provider       SwapProvider
	wallet         Wallet
	broadcaster    Broadcaster
	confirmTimeout time.Duration
	logger         *log.Logger
}

// DirectExecutorOptions configures a DirectExecutor.
type DirectExecutorOptions struct {
	Provider       SwapProvider
	Wallet         Wallet
	Broadcaster    Broadcaster
	ConfirmTimeout time.Duration // default DefaultConfirmTimeout
	Logger         *log.Logger
}

// NewDirectExecutor creates a direct executor.
func NewDirectExecutor(opts DirectExecutorOptions) *DirectExecutor {
	confirmTimeout := opts.ConfirmTimeout
	if confirmTimeout == 0 {
		confirmTimeout = DefaultConfirmTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &DirectExecutor{
		provider:       opts.Provider,
		wallet:         opts.Wallet,
		broadcaster:    opts.Broadcaster,
		confirmTimeout: confirmTimeout,
		logger:         logger,
	}
}

// ExecuteTrade runs one leg to resolution.
func (e *DirectExecutor) ExecuteTrade(ctx context.Context, cfg domain.CampaignConfig, direction domain.TradeDirection, amountSOL float64) TradeResult {
	req := QuoteRequest{
		SlippageBps: int(cfg.SlippagePct * 100),
	}
	switch direction {
	case domain.DirectionBuy:
		req.InputMint = WSOLMint
		req.OutputMint = cfg.TokenMint
		req.AmountIn = uint64(amountSOL * lamportsPerSOL)
	case domain.DirectionSell:
		req.InputMint = cfg.TokenMint
		req.OutputMint = WSOLMint
		// Sell whatever the matching buy acquired; the provider resolves the
		// wallet's token balance when AmountIn is zero.
		req.AmountIn = 0
	default:
		return failed(fmt.Sprintf("unknown trade direction %q", direction), false)
	}

	quote, err := e.provider.Quote(ctx, req)
	if err != nil {
		return failed(fmt.Sprintf("quote: %v", err), isTimeout(err))
	}

	signedTx, err := e.wallet.SignTransaction(quote.UnsignedTx)
	if err != nil {
		return failed(fmt.Sprintf("sign: %v", err), false)
	}

	signature, err := e.broadcaster.SendTransaction(ctx, signedTx)
	if err != nil {
		return failed(fmt.Sprintf("broadcast: %v", err), isTimeout(err))
	}

	confirmCtx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	if err := e.broadcaster.ConfirmTransaction(confirmCtx, signature); err != nil {
		if isTimeout(err) {
			// The transaction might still land; the leg is counted failed
			// regardless.
			return failed(fmt.Sprintf("confirmation timed out after %v (tx %s)", e.confirmTimeout, signature), true)
		}
		return failed(fmt.Sprintf("confirm: %v", err), false)
	}

	return TradeResult{Success: true, TxSignature: signature}
}

func failed(detail string, timedOut bool) TradeResult {
	return TradeResult{ErrorDetail: detail, TimedOut: timedOut}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

var _ TradeExecutor = (*DirectExecutor)(nil)
