// Package campaign validates user-supplied campaign specifications and
// normalizes them into domain.CampaignConfig values.
package campaign

import (
	"fmt"
	"sort"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-volume-bot/internal/domain"
)

// MinBalanceBufferSOL is the fee headroom required on top of one trade size.
const MinBalanceBufferSOL = 0.01

// RawInput is a campaign specification as submitted, before validation.
type RawInput struct {
	TokenAddress    string
	TradeCount      int
	DurationMinutes int
	TradeSizeSOL    float64
	SlippagePct     float64
	Mode            string

	// Advanced mode only
	DelayMinSeconds int
	DelayMaxSeconds int

	// Trending mode only
	Platforms []string
	Intensity string

	UserWallet string
}

// Lookups carries the results of external read-only checks. They are inputs
// to validation, not performed by it. An unavailable lookup degrades to a
// warning instead of blocking submission.
type Lookups struct {
	WalletConnected bool

	BalanceSOL         float64
	BalanceUnavailable bool // balance lookup failed (LookupUnavailable)

	PoolExists      bool
	PoolUnavailable bool // pool lookup failed (LookupUnavailable)
}

// ValidationErrors maps field names to human-readable violations. All
// violations are collected; validation never stops at the first failure.
type ValidationErrors map[string]string

// Error renders the violations sorted by field name.
func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e[k])
	}
	return strings.Join(parts, "; ")
}

// Validate checks every field of input independently and returns either a
// normalized config or the complete set of violations. Out-of-range values
// are rejected, never clamped.
func Validate(input RawInput, lookups Lookups) (*domain.CampaignConfig, ValidationErrors) {
	errs := ValidationErrors{}

	if !lookups.WalletConnected {
		errs["wallet"] = "wallet is not connected"
	} else if input.UserWallet != "" && !isOnCurveAddress(input.UserWallet) {
		errs["wallet"] = "wallet address is not a valid ed25519 public key"
	}

	if input.TokenAddress == "" {
		errs["tokenAddress"] = "token address is required"
	} else if !isValidMint(input.TokenAddress) {
		errs["tokenAddress"] = "token address is not a valid base58 mint"
	} else if !lookups.PoolUnavailable && !lookups.PoolExists {
		errs["tokenAddress"] = "no liquidity pool found for this token"
	}

	if input.TradeCount < domain.TradeCountMin || input.TradeCount > domain.TradeCountMax {
		errs["tradeCount"] = fmt.Sprintf("trade count must be between %d and %d", domain.TradeCountMin, domain.TradeCountMax)
	}

	if input.DurationMinutes < domain.DurationMinutesMin || input.DurationMinutes > domain.DurationMinutesMax {
		errs["durationMinutes"] = fmt.Sprintf("duration must be between %d and %d minutes", domain.DurationMinutesMin, domain.DurationMinutesMax)
	}

	if input.TradeSizeSOL < domain.TradeSizeSOLMin || input.TradeSizeSOL > domain.TradeSizeSOLMax {
		errs["tradeSize"] = fmt.Sprintf("trade size must be between %g and %g SOL", domain.TradeSizeSOLMin, domain.TradeSizeSOLMax)
	}

	if input.SlippagePct < domain.SlippagePctMin || input.SlippagePct > domain.SlippagePctMax {
		errs["slippage"] = fmt.Sprintf("slippage must be between %g%% and %g%%", domain.SlippagePctMin, domain.SlippagePctMax)
	}

	mode := domain.Mode(strings.ToUpper(input.Mode))
	if !mode.Valid() {
		errs["mode"] = fmt.Sprintf("unknown mode %q", input.Mode)
	}

	// Balance check only applies when the lookup succeeded; an unavailable
	// lookup degrades to Warnings instead of blocking.
	if lookups.WalletConnected && !lookups.BalanceUnavailable {
		required := input.TradeSizeSOL + MinBalanceBufferSOL
		if lookups.BalanceSOL < required {
			errs["balance"] = fmt.Sprintf("wallet balance %.4f SOL is below required %.4f SOL", lookups.BalanceSOL, required)
		}
	}

	cfg := &domain.CampaignConfig{
		TokenMint:       input.TokenAddress,
		TradeCount:      input.TradeCount,
		DurationMinutes: input.DurationMinutes,
		TradeSizeSOL:    input.TradeSizeSOL,
		SlippagePct:     input.SlippagePct,
		Mode:            mode,
		UserWallet:      input.UserWallet,
	}

	switch mode {
	case domain.ModeAdvanced:
		if input.DelayMinSeconds <= 0 {
			errs["advancedDelay"] = "minimum delay must be positive"
		} else if input.DelayMinSeconds >= input.DelayMaxSeconds {
			errs["advancedDelay"] = "minimum delay must be less than maximum delay"
		} else {
			cfg.AdvancedDelay = &domain.DelayRange{
				MinSeconds: input.DelayMinSeconds,
				MaxSeconds: input.DelayMaxSeconds,
			}
		}
	case domain.ModeTrending:
		if len(input.Platforms) == 0 {
			errs["platforms"] = "select at least one trending platform"
		} else {
			cfg.Trending = &domain.TrendingSelection{
				Platforms: append([]string(nil), input.Platforms...),
				Intensity: input.Intensity,
			}
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return cfg, nil
}

// Warnings reports degraded external lookups. These never block submission.
func Warnings(lookups Lookups) []string {
	var out []string
	if lookups.BalanceUnavailable {
		out = append(out, "balance check unavailable, continuing without it")
	}
	if lookups.PoolUnavailable {
		out = append(out, "pool check unavailable, continuing without it")
	}
	return out
}

// isValidMint reports whether s decodes to a 32-byte base58 value.
func isValidMint(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// isOnCurveAddress reports whether s is a 32-byte base58 value on the
// ed25519 curve. Wallet addresses are ed25519 public keys; program-derived
// addresses are off-curve and cannot sign.
func isOnCurveAddress(s string) bool {
	decoded, err := base58.Decode(s)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
