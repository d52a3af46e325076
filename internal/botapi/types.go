package botapi

import "solana-volume-bot/internal/domain"

// JobStatus is the remote bot service's view of a job lifecycle.
type JobStatus string

// Remote job statuses as reported by the service.
const (
	JobRunning   JobStatus = "running"
	JobPaused    JobStatus = "paused"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the remote status ends the job.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// RunStatus maps a remote job status onto the local run status enum.
func (s JobStatus) RunStatus() domain.RunStatus {
	switch s {
	case JobPaused:
		return domain.StatusPaused
	case JobCompleted:
		return domain.StatusCompleted
	case JobFailed:
		return domain.StatusError
	default:
		return domain.StatusRunning
	}
}

// StartRequest is the body of POST /run-volume-bot.
type StartRequest struct {
	UserWallet        string   `json:"user_wallet"`
	TokenMint         string   `json:"token_mint"`
	Mode              string   `json:"mode"`
	NumMakers         int      `json:"num_makers"`
	DurationHours     float64  `json:"duration_hours"`
	TradeSizeSOL      float64  `json:"trade_size_sol"`
	SlippagePct       float64  `json:"slippage_pct"`
	TargetPriceUSD    *float64 `json:"target_price_usd,omitempty"`
	UseJito           bool     `json:"use_jito,omitempty"`
	CustomDelayMin    int      `json:"custom_delay_min,omitempty"`
	CustomDelayMax    int      `json:"custom_delay_max,omitempty"`
	SelectedPlatforms []string `json:"selected_platforms,omitempty"`
	TrendingIntensity string   `json:"trending_intensity,omitempty"`
}

// StartRequestFromConfig translates a validated campaign config into the
// wire shape the service expects.
func StartRequestFromConfig(cfg domain.CampaignConfig) StartRequest {
	req := StartRequest{
		UserWallet:    cfg.UserWallet,
		TokenMint:     cfg.TokenMint,
		Mode:          modeWireName(cfg.Mode),
		NumMakers:     cfg.TradeCount,
		DurationHours: float64(cfg.DurationMinutes) / 60.0,
		TradeSizeSOL:  cfg.TradeSizeSOL,
		SlippagePct:   cfg.SlippagePct,
	}
	if cfg.AdvancedDelay != nil {
		req.CustomDelayMin = cfg.AdvancedDelay.MinSeconds
		req.CustomDelayMax = cfg.AdvancedDelay.MaxSeconds
	}
	if cfg.Trending != nil {
		req.SelectedPlatforms = cfg.Trending.Platforms
		req.TrendingIntensity = cfg.Trending.Intensity
	}
	return req
}

func modeWireName(m domain.Mode) string {
	switch m {
	case domain.ModeBoost:
		return "boost"
	case domain.ModeBump:
		return "bump"
	case domain.ModeAdvanced:
		return "advanced"
	case domain.ModeTrending:
		return "trending"
	default:
		return string(m)
	}
}

// StartResponse is the body returned by POST /run-volume-bot.
type StartResponse struct {
	Status                 string  `json:"status"`
	JobID                  string  `json:"job_id"`
	Message                string  `json:"message"`
	EstimatedDurationHours float64 `json:"estimated_duration_hours"`
	EstimatedVolumeUSD     float64 `json:"estimated_volume_usd"`
}

// TransactionStats is the per-job transaction breakdown.
type TransactionStats struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// ProgressSnapshot is the body of GET /bot-progress/{job_id}.
type ProgressSnapshot struct {
	JobID               string           `json:"job_id"`
	Status              JobStatus        `json:"status"`
	CompletedMakers     int              `json:"completed_makers"`
	TotalMakers         int              `json:"total_makers"`
	GeneratedVolume     float64          `json:"generated_volume"`
	CurrentBuyRatio     float64          `json:"current_buy_ratio"`
	ProgressPercentage  float64          `json:"progress_percentage"`
	EstimatedCompletion string           `json:"estimated_completion,omitempty"`
	Transactions        TransactionStats `json:"transactions"`
	ActiveWallets       int              `json:"active_wallets"`
	ErrorMessage        string           `json:"error_message,omitempty"`
}

// StopResponse is the body returned by POST /stop-bot/{job_id}.
type StopResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// PoolInfo describes the liquidity pool backing a mint.
type PoolInfo struct {
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24h    float64 `json:"volume_24h"`
	FeeTier      float64 `json:"fee_tier"`
}

// PoolCheck is the body of GET /check-pool/{token_mint}.
type PoolCheck struct {
	Exists    bool      `json:"exists"`
	TokenMint string    `json:"token_mint"`
	PoolInfo  *PoolInfo `json:"pool_info,omitempty"`
}

// Platform describes one trending platform in the catalog.
type Platform struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MinVolume24h float64 `json:"min_volume_24h"`
	Difficulty   string  `json:"difficulty"`
}

// Intensity describes one trending intensity level.
type Intensity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PlatformCatalog is the body of GET /trending/platforms.
type PlatformCatalog struct {
	Platforms   []Platform  `json:"platforms"`
	Intensities []Intensity `json:"intensities"`
}

// DefaultPlatformCatalog is the fallback used when the catalog endpoint is
// unreachable. The feature degrades to this list rather than blocking.
func DefaultPlatformCatalog() *PlatformCatalog {
	return &PlatformCatalog{
		Platforms: []Platform{
			{ID: "dexscreener", Name: "DEX Screener", MinVolume24h: 50000, Difficulty: "medium"},
			{ID: "dextools", Name: "DEXTools", MinVolume24h: 100000, Difficulty: "hard"},
			{ID: "birdeye", Name: "Birdeye", MinVolume24h: 25000, Difficulty: "easy"},
		},
		Intensities: []Intensity{
			{ID: "low", Name: "Low", Description: "Minimum volume to register on trackers"},
			{ID: "medium", Name: "Medium", Description: "Sustained mid-tier trending presence"},
			{ID: "high", Name: "High", Description: "Aggressive push for top trending slots"},
		},
	}
}

// CostRequest is the body of POST /trending/multi-platform-costs.
type CostRequest struct {
	TokenMint string   `json:"token_mint"`
	Platforms []string `json:"platforms"`
	Intensity string   `json:"intensity"`
}

// PlatformCost is the per-platform estimate in a CostEstimate.
type PlatformCost struct {
	PlatformID     string  `json:"platform_id"`
	CostSOL        float64 `json:"cost_sol"`
	SuccessPct     float64 `json:"success_pct"`
	EstimatedHours float64 `json:"estimated_hours"`
}

// CostEstimate is the body returned by POST /trending/multi-platform-costs.
type CostEstimate struct {
	PerPlatform       []PlatformCost `json:"per_platform"`
	TotalCostSOL      float64        `json:"total_cost_sol"`
	CombinedSuccess   float64        `json:"combined_success_pct"`
	MaxEstimatedHours float64        `json:"max_estimated_hours"`
}
