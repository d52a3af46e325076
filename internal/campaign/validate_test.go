package campaign

import (
	"strings"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"solana-volume-bot/internal/domain"
)

// wsolMint is a real 32-byte base58 mint address.
const wsolMint = "So11111111111111111111111111111111111111112"

// validWallet returns a base58 address that is a point on the ed25519 curve.
func validWallet() string {
	return base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
}

func validInput() RawInput {
	return RawInput{
		TokenAddress:    wsolMint,
		TradeCount:      20,
		DurationMinutes: 60,
		TradeSizeSOL:    0.05,
		SlippagePct:     1.0,
		Mode:            "bump",
		UserWallet:      validWallet(),
	}
}

func healthyLookups() Lookups {
	return Lookups{
		WalletConnected: true,
		BalanceSOL:      1.0,
		PoolExists:      true,
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg, errs := Validate(validInput(), healthyLookups())
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if cfg.Mode != domain.ModeBump {
		t.Errorf("expected normalized mode BUMP, got %s", cfg.Mode)
	}
	if cfg.TokenMint != wsolMint {
		t.Errorf("expected token mint %s, got %s", wsolMint, cfg.TokenMint)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	input := validInput()
	input.TokenAddress = ""
	input.TradeCount = 5
	input.DurationMinutes = 2000

	cfg, errs := Validate(input, healthyLookups())
	if cfg != nil {
		t.Fatal("expected nil config for invalid input")
	}

	for _, field := range []string{"tokenAddress", "tradeCount", "durationMinutes"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected violation for %s, got: %v", field, errs)
		}
	}
	if len(errs) != 3 {
		t.Errorf("expected exactly 3 violations, got %d: %v", len(errs), errs)
	}
}

func TestValidate_WalletNotConnected(t *testing.T) {
	lookups := healthyLookups()
	lookups.WalletConnected = false

	_, errs := Validate(validInput(), lookups)
	if msg, ok := errs["wallet"]; !ok {
		t.Errorf("expected wallet violation, got: %v", errs)
	} else if !strings.Contains(msg, "not connected") {
		t.Errorf("unexpected wallet message: %q", msg)
	}
}

func TestValidate_MalformedWalletAddress(t *testing.T) {
	input := validInput()
	input.UserWallet = "0-not-base58"

	_, errs := Validate(input, healthyLookups())
	if _, ok := errs["wallet"]; !ok {
		t.Errorf("expected wallet violation, got: %v", errs)
	}
}

func TestValidate_MalformedMint(t *testing.T) {
	input := validInput()
	input.TokenAddress = "abc" // valid base58, wrong length

	_, errs := Validate(input, healthyLookups())
	if _, ok := errs["tokenAddress"]; !ok {
		t.Errorf("expected tokenAddress violation, got: %v", errs)
	}
}

func TestValidate_NoPoolForToken(t *testing.T) {
	lookups := healthyLookups()
	lookups.PoolExists = false

	_, errs := Validate(validInput(), lookups)
	if msg, ok := errs["tokenAddress"]; !ok {
		t.Errorf("expected tokenAddress violation, got: %v", errs)
	} else if !strings.Contains(msg, "pool") {
		t.Errorf("unexpected tokenAddress message: %q", msg)
	}
}

func TestValidate_BoundsRejectedNotClamped(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RawInput)
		field  string
	}{
		{"trade count low", func(in *RawInput) { in.TradeCount = 9 }, "tradeCount"},
		{"trade count high", func(in *RawInput) { in.TradeCount = 101 }, "tradeCount"},
		{"duration low", func(in *RawInput) { in.DurationMinutes = 0 }, "durationMinutes"},
		{"duration high", func(in *RawInput) { in.DurationMinutes = 1441 }, "durationMinutes"},
		{"trade size low", func(in *RawInput) { in.TradeSizeSOL = 0.009 }, "tradeSize"},
		{"trade size high", func(in *RawInput) { in.TradeSizeSOL = 0.11 }, "tradeSize"},
		{"slippage low", func(in *RawInput) { in.SlippagePct = 0.05 }, "slippage"},
		{"slippage high", func(in *RawInput) { in.SlippagePct = 10.5 }, "slippage"},
		{"unknown mode", func(in *RawInput) { in.Mode = "turbo" }, "mode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			cfg, errs := Validate(input, healthyLookups())
			if cfg != nil {
				t.Fatal("expected rejection, got a config")
			}
			if _, ok := errs[tc.field]; !ok {
				t.Errorf("expected violation for %s, got: %v", tc.field, errs)
			}
		})
	}
}

func TestValidate_InsufficientBalance(t *testing.T) {
	lookups := healthyLookups()
	lookups.BalanceSOL = 0.05 // need trade size + fee buffer

	_, errs := Validate(validInput(), lookups)
	if _, ok := errs["balance"]; !ok {
		t.Errorf("expected balance violation, got: %v", errs)
	}
}

func TestValidate_AdvancedDelayRange(t *testing.T) {
	input := validInput()
	input.Mode = "advanced"
	input.DelayMinSeconds = 30
	input.DelayMaxSeconds = 5

	_, errs := Validate(input, healthyLookups())
	if _, ok := errs["advancedDelay"]; !ok {
		t.Errorf("expected advancedDelay violation, got: %v", errs)
	}

	input.DelayMinSeconds = 5
	input.DelayMaxSeconds = 30
	cfg, errs := Validate(input, healthyLookups())
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if cfg.AdvancedDelay == nil || cfg.AdvancedDelay.MinSeconds != 5 || cfg.AdvancedDelay.MaxSeconds != 30 {
		t.Errorf("expected delay range [5,30], got %+v", cfg.AdvancedDelay)
	}
}

func TestValidate_TrendingRequiresPlatforms(t *testing.T) {
	input := validInput()
	input.Mode = "trending"
	input.Intensity = "medium"

	_, errs := Validate(input, healthyLookups())
	if _, ok := errs["platforms"]; !ok {
		t.Errorf("expected platforms violation, got: %v", errs)
	}

	input.Platforms = []string{"dexscreener", "birdeye"}
	cfg, errs := Validate(input, healthyLookups())
	if errs != nil {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
	if cfg.Trending == nil || len(cfg.Trending.Platforms) != 2 || cfg.Trending.Intensity != "medium" {
		t.Errorf("expected trending selection, got %+v", cfg.Trending)
	}
}

func TestValidate_DegradedLookupsWarnInsteadOfBlock(t *testing.T) {
	lookups := Lookups{
		WalletConnected:    true,
		BalanceUnavailable: true,
		PoolUnavailable:    true,
	}

	cfg, errs := Validate(validInput(), lookups)
	if errs != nil {
		t.Fatalf("degraded lookups must not block submission: %v", errs)
	}
	if cfg == nil {
		t.Fatal("expected a config")
	}

	warnings := Warnings(lookups)
	if len(warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", warnings)
	}
}

func TestValidationErrors_ErrorSortedByField(t *testing.T) {
	errs := ValidationErrors{
		"tradeCount":   "too low",
		"balance":      "too poor",
		"tokenAddress": "bad mint",
	}
	got := errs.Error()
	want := "balance: too poor; tokenAddress: bad mint; tradeCount: too low"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
