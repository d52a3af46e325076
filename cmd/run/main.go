// Package main runs a single volume campaign from the command line:
// validate the configuration, drive it to completion with live progress,
// and print a trade-log summary.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"

	"solana-volume-bot/internal/botapi"
	"solana-volume-bot/internal/campaign"
	"solana-volume-bot/internal/config"
	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/executor"
	"solana-volume-bot/internal/observability"
	"solana-volume-bot/internal/pacing"
	"solana-volume-bot/internal/solana"
	"solana-volume-bot/internal/swap"
	"solana-volume-bot/internal/wallet"
)

func main() {
	token := flag.String("token", "", "Token mint address")
	walletPub := flag.String("wallet", "", "Funding wallet public key")
	trades := flag.Int("trades", 20, "Number of buy/sell trade-pairs")
	duration := flag.Int("duration", 60, "Campaign window in minutes")
	size := flag.Float64("size", 0.01, "Trade size in SOL")
	slippage := flag.Float64("slippage", 1.0, "Max slippage percent")
	mode := flag.String("mode", "bump", "Pacing mode: boost, bump, advanced, trending")
	delayMin := flag.Int("delay-min", 0, "ADVANCED mode: minimum delay in seconds")
	delayMax := flag.Int("delay-max", 0, "ADVANCED mode: maximum delay in seconds")
	platforms := flag.String("platforms", "", "TRENDING mode: comma-separated platform IDs")
	intensity := flag.String("intensity", "medium", "TRENDING mode: intensity ID")
	skipLookups := flag.Bool("skip-lookups", false, "Skip balance and pool checks")

	flag.Parse()

	logger := log.New(os.Stdout, "[run] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	metrics := observability.Default()

	bot := botapi.NewClient(cfg.Bot.BaseURL,
		botapi.WithTimeout(cfg.Bot.Timeout()),
		botapi.WithMetrics(metrics),
	)
	rpc := solana.NewHTTPClient(cfg.Solana.RPCEndpoint)

	lookups := gatherLookups(bot, rpc, *walletPub, *token, *skipLookups, logger)

	input := campaign.RawInput{
		TokenAddress:    *token,
		TradeCount:      *trades,
		DurationMinutes: *duration,
		TradeSizeSOL:    *size,
		SlippagePct:     *slippage,
		Mode:            *mode,
		DelayMinSeconds: *delayMin,
		DelayMaxSeconds: *delayMax,
		Platforms:       splitList(*platforms),
		Intensity:       *intensity,
		UserWallet:      *walletPub,
	}

	campaignCfg, verrs := campaign.Validate(input, lookups)
	if verrs != nil {
		fmt.Fprintln(os.Stderr, "Invalid campaign configuration:")
		fields := make([]string, 0, len(verrs))
		for f := range verrs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(os.Stderr, "  %-16s %s\n", f, verrs[f])
		}
		os.Exit(1)
	}
	for _, w := range campaign.Warnings(lookups) {
		logger.Printf("Warning: %s", w)
	}

	if campaignCfg.Mode == domain.ModeTrending {
		printCostEstimate(bot, campaignCfg, logger)
	}

	opts := pacing.Options{
		Bot:          bot,
		FeedURL:      cfg.Bot.WSURL,
		PollInterval: cfg.Bot.PollInterval(),
		Logger:       logger,
		Metrics:      metrics,
	}
	if campaignCfg.Mode != domain.ModeTrending {
		opts.Executor = executor.NewDirectExecutor(executor.DirectExecutorOptions{
			Provider:    swap.NewClient(cfg.Swap.BaseURL, *walletPub),
			Wallet:      wallet.NewRemoteSigner(cfg.Signer.Endpoint, *walletPub),
			Broadcaster: rpc,
			Logger:      logger,
		})
	}

	engine := pacing.NewEngine(opts)

	ctx := context.Background()
	run, err := engine.Start(ctx, *campaignCfg)
	if err != nil {
		logger.Fatalf("Start campaign: %v", err)
	}
	metrics.CampaignsStarted.WithLabelValues(string(campaignCfg.Mode)).Inc()
	startedAt := time.Now()
	logger.Printf("Campaign %s started", run.ID)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("Stop requested, finishing current operation...")
		engine.Stop()
	}()

	final := watchProgress(engine, campaignCfg.TradeCount)

	metrics.CampaignsCompleted.WithLabelValues(string(final.Status)).Inc()
	metrics.CampaignDuration.Observe(time.Since(startedAt).Seconds())

	printSummary(&final)

	if final.Status == domain.StatusError {
		os.Exit(1)
	}
}

// gatherLookups performs the best-effort external checks that feed
// validation. A failed lookup degrades instead of blocking.
func gatherLookups(bot *botapi.Client, rpc *solana.HTTPClient, walletPub, token string, skip bool, logger *log.Logger) campaign.Lookups {
	lookups := campaign.Lookups{WalletConnected: walletPub != ""}
	if skip {
		lookups.BalanceUnavailable = true
		lookups.PoolUnavailable = true
		return lookups
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if walletPub != "" {
		balance, err := rpc.GetBalanceSOL(ctx, walletPub)
		if err != nil {
			logger.Printf("Balance lookup failed: %v", err)
			lookups.BalanceUnavailable = true
		} else {
			lookups.BalanceSOL = balance
		}
	}

	if token != "" {
		pool, err := bot.CheckPool(ctx, token)
		if err != nil {
			logger.Printf("Pool lookup failed: %v", err)
			lookups.PoolUnavailable = true
		} else {
			lookups.PoolExists = pool.Exists
		}
	}
	return lookups
}

// printCostEstimate fetches trending costs; a failure only loses the preview.
func printCostEstimate(bot *botapi.Client, cfg *domain.CampaignConfig, logger *log.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	est, err := bot.MultiPlatformCosts(ctx, botapi.CostRequest{
		TokenMint: cfg.TokenMint,
		Platforms: cfg.Trending.Platforms,
		Intensity: cfg.Trending.Intensity,
	})
	if err != nil {
		logger.Printf("Cost estimate unavailable: %v", err)
		return
	}
	logger.Printf("Estimated cost %.2f SOL across %d platform(s), ~%.0f%% success, up to %.1fh",
		est.TotalCostSOL, len(est.PerPlatform), est.CombinedSuccess, est.MaxEstimatedHours)
}

// watchProgress renders a live progress bar until the engine finishes.
func watchProgress(engine *pacing.Engine, tradeCount int) domain.CampaignRun {
	bar := progressbar.NewOptions(tradeCount,
		progressbar.OptionSetDescription("trades"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
	)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-engine.Done():
			final := engine.Snapshot()
			_ = bar.Set(final.CompletedCount)
			_ = bar.Finish()
			fmt.Println()
			return final
		case <-ticker.C:
			_ = bar.Set(engine.Snapshot().CompletedCount)
		}
	}
}

// printSummary renders campaign totals and the most recent trades.
func printSummary(run *domain.CampaignRun) {
	fmt.Printf("Status: %s   pairs: %d/%d   ok: %d   failed: %d   volume: %.4f SOL\n",
		run.Status, run.CompletedCount, run.Config.TradeCount, run.SuccessCount, run.FailureCount, run.VolumeGenerated)
	if run.ErrorDetail != "" {
		fmt.Printf("Error: %s\n", run.ErrorDetail)
	}

	recent := run.RecentTrades(domain.DisplayTradeLimit)
	if len(recent) == 0 {
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Time", "Side", "Amount (SOL)", "Status", "Tx / Error"})
	for _, entry := range recent {
		ref := entry.TxSignature
		if entry.Status == domain.TradeFailed {
			ref = entry.ErrorDetail
		}
		table.Append([]string{
			time.UnixMilli(entry.TimestampMs).Format("15:04:05"),
			string(entry.Direction),
			fmt.Sprintf("%.4f", entry.AmountSOL),
			string(entry.Status),
			truncate(ref, 44),
		})
	}
	table.Render()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
