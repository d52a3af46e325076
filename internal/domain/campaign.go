package domain

// Mode selects the pacing policy for a campaign.
type Mode string

// Campaign modes.
const (
	// ModeBoost packs trades into roughly half the nominal window for a
	// front-loaded volume spike.
	ModeBoost Mode = "BOOST"
	// ModeBump distributes trades evenly across the full window.
	ModeBump Mode = "BUMP"
	// ModeAdvanced draws each inter-trade delay uniformly from a
	// user-supplied range, ignoring the campaign duration.
	ModeAdvanced Mode = "ADVANCED"
	// ModeTrending delegates execution to the remote bot service and
	// tracks progress by polling.
	ModeTrending Mode = "TRENDING"
)

// Valid reports whether m is a known campaign mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBoost, ModeBump, ModeAdvanced, ModeTrending:
		return true
	}
	return false
}

// Configuration bounds enforced by the campaign configurator.
// Trade count bounds follow the conservative [10,100] range.
const (
	TradeCountMin = 10
	TradeCountMax = 100

	DurationMinutesMin = 1
	DurationMinutesMax = 1440

	TradeSizeSOLMin = 0.01
	TradeSizeSOLMax = 0.1

	SlippagePctMin = 0.1
	SlippagePctMax = 10.0
)

// DelayRange is the per-trade delay window for ADVANCED mode, in seconds.
type DelayRange struct {
	MinSeconds int
	MaxSeconds int
}

// TrendingSelection holds the TRENDING mode parameters: which trending
// platforms to target and how aggressively.
type TrendingSelection struct {
	Platforms []string // platform IDs from the trending catalog
	Intensity string   // intensity ID from the trending catalog
}

// CampaignConfig is a validated campaign specification. It is immutable once
// a campaign starts; the pacing engine never writes to it.
//
// The mode-specific parameters form a tagged union over Mode: AdvancedDelay
// is non-nil exactly when Mode is ADVANCED, Trending is non-nil exactly when
// Mode is TRENDING. The configurator enforces this.
type CampaignConfig struct {
	TokenMint       string  // base58 SPL mint address
	TradeCount      int     // number of buy/sell trade-pairs
	DurationMinutes int     // nominal campaign window
	TradeSizeSOL    float64 // per-trade size in SOL
	SlippagePct     float64 // max acceptable slippage per leg

	Mode          Mode
	AdvancedDelay *DelayRange
	Trending      *TrendingSelection

	UserWallet string // funding wallet public key
}
