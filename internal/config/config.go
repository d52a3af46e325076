// Package config loads application configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates all configuration sections. Fields are populated from
// environment variables; nested structs are parsed with their envPrefix.
type Config struct {
	// Env names the deployment environment (e.g. dev, prod).
	Env string `env:"ENV" envDefault:"dev"`

	// Bot configures the remote bot-execution service client. Variables are
	// prefixed with BOT_.
	Bot BotService `envPrefix:"BOT_"`

	// Solana configures the RPC client. Variables are prefixed with SOLANA_.
	Solana Solana `envPrefix:"SOLANA_"`

	// Swap configures the DEX aggregator client. Variables are prefixed
	// with SWAP_.
	Swap Swap `envPrefix:"SWAP_"`

	// Signer configures the external wallet provider. Variables are
	// prefixed with SIGNER_.
	Signer Signer `envPrefix:"SIGNER_"`

	// HTTP configures the control-surface server. Variables are prefixed
	// with HTTP_.
	HTTP HTTP `envPrefix:"HTTP_"`

	// MetricsAddr is the Prometheus listen address; empty disables metrics.
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
}

// BotService configures the remote bot-execution service client.
type BotService struct {
	// BaseURL is the HTTP base URL of the service.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8000"`

	// WSURL is the optional WebSocket progress endpoint. Empty means
	// progress is polled instead of streamed.
	WSURL string `env:"WS_URL"`

	// TimeoutSeconds bounds every HTTP call to the service.
	TimeoutSeconds int `env:"TIMEOUT_SECONDS" envDefault:"10"`

	// PollIntervalSeconds is the progress poll cadence.
	PollIntervalSeconds int `env:"POLL_INTERVAL_SECONDS" envDefault:"5"`
}

// Timeout returns the call timeout as a duration.
func (b BotService) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// PollInterval returns the poll cadence as a duration.
func (b BotService) PollInterval() time.Duration {
	return time.Duration(b.PollIntervalSeconds) * time.Second
}

// Solana configures the RPC client.
type Solana struct {
	RPCEndpoint string `env:"RPC_ENDPOINT" envDefault:"https://api.mainnet-beta.solana.com"`
}

// Swap configures the DEX aggregator client.
type Swap struct {
	BaseURL string `env:"BASE_URL" envDefault:"https://quote-api.jup.ag/v6"`
}

// Signer configures the external wallet provider that signs transactions.
type Signer struct {
	Endpoint string `env:"ENDPOINT"`
}

// HTTP configures the control-surface server.
type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
}

// Load reads a .env file when present, then parses the environment into a
// Config. Defaults apply when a variable is unset.
func Load() (Config, error) {
	// Missing .env is fine; the environment alone is a complete source.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
