// Package main runs the campaign control surface: an HTTP API to create,
// inspect and stop volume campaigns, plus Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"solana-volume-bot/internal/botapi"
	"solana-volume-bot/internal/campaign"
	"solana-volume-bot/internal/config"
	"solana-volume-bot/internal/domain"
	"solana-volume-bot/internal/executor"
	"solana-volume-bot/internal/observability"
	"solana-volume-bot/internal/pacing"
	"solana-volume-bot/internal/solana"
	"solana-volume-bot/internal/storage"
	"solana-volume-bot/internal/storage/memory"
	"solana-volume-bot/internal/swap"
	"solana-volume-bot/internal/wallet"
)

func main() {
	addr := flag.String("addr", "", "Listen address (overrides HTTP_PORT)")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Load config: %v", err)
	}

	listen := *addr
	if listen == "" {
		listen = fmt.Sprintf(":%d", cfg.HTTP.Port)
	}

	srv := newServer(cfg, logger)

	httpSrv := &http.Server{
		Addr:    listen,
		Handler: srv.routes(),
	}

	go func() {
		logger.Printf("Listening on %s", listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Println("Shutting down...")
	srv.stopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}
}

// server holds the control-surface state: one pacing engine per campaign
// and the shared run store for display reads.
type server struct {
	cfg     config.Config
	bot     *botapi.Client
	rpc     *solana.HTTPClient
	store   storage.RunStore
	metrics *observability.Metrics
	logger  *log.Logger

	mu      sync.Mutex
	engines []*pacing.Engine
}

func newServer(cfg config.Config, logger *log.Logger) *server {
	metrics := observability.Default()
	return &server{
		cfg: cfg,
		bot: botapi.NewClient(cfg.Bot.BaseURL,
			botapi.WithTimeout(cfg.Bot.Timeout()),
			botapi.WithMetrics(metrics),
		),
		rpc:     solana.NewHTTPClient(cfg.Solana.RPCEndpoint),
		store:   memory.NewRunStore(),
		metrics: metrics,
		logger:  logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/campaigns", s.handleCreateCampaign)
		r.Get("/campaigns", s.handleListCampaigns)
		r.Get("/campaigns/{id}", s.handleGetCampaign)
		r.Post("/campaigns/{id}/stop", s.handleStopCampaign)
		r.Get("/trending/platforms", s.handleTrendingPlatforms)
		r.Post("/trending/costs", s.handleTrendingCosts)
	})
	r.Handle("/metrics", observability.Handler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return r
}

// campaignRequest mirrors the form fields a client submits.
type campaignRequest struct {
	TokenAddress    string   `json:"tokenAddress"`
	TradeCount      int      `json:"tradeCount"`
	DurationMinutes int      `json:"durationMinutes"`
	TradeSizeSOL    float64  `json:"tradeSize"`
	SlippagePct     float64  `json:"slippage"`
	Mode            string   `json:"mode"`
	DelayMinSeconds int      `json:"delayMinSeconds,omitempty"`
	DelayMaxSeconds int      `json:"delayMaxSeconds,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
	Intensity       string   `json:"intensity,omitempty"`
	UserWallet      string   `json:"wallet"`
}

// runView is the read-only display snapshot of a run.
type runView struct {
	ID                        string      `json:"id"`
	Status                    string      `json:"status"`
	Mode                      string      `json:"mode"`
	TokenMint                 string      `json:"tokenMint"`
	TradeCount                int         `json:"tradeCount"`
	CompletedCount            int         `json:"completedCount"`
	SuccessCount              int         `json:"successCount"`
	FailureCount              int         `json:"failureCount"`
	VolumeGenerated           float64     `json:"volumeGenerated"`
	EstimatedRemainingMinutes float64     `json:"estimatedRemainingMinutes"`
	RecentTrades              []tradeView `json:"recentTrades"`
	ErrorDetail               string      `json:"errorDetail,omitempty"`
}

type tradeView struct {
	ID          string  `json:"id"`
	TimestampMs int64   `json:"timestampMs"`
	Direction   string  `json:"direction"`
	AmountSOL   float64 `json:"amountSol"`
	Status      string  `json:"status"`
	TxSignature string  `json:"txSignature,omitempty"`
	ErrorDetail string  `json:"errorDetail,omitempty"`
}

func viewOf(run *domain.CampaignRun) runView {
	view := runView{
		ID:                        run.ID,
		Status:                    string(run.Status),
		Mode:                      string(run.Config.Mode),
		TokenMint:                 run.Config.TokenMint,
		TradeCount:                run.Config.TradeCount,
		CompletedCount:            run.CompletedCount,
		SuccessCount:              run.SuccessCount,
		FailureCount:              run.FailureCount,
		VolumeGenerated:           run.VolumeGenerated,
		EstimatedRemainingMinutes: run.EstimatedRemainingMinutes,
		ErrorDetail:               run.ErrorDetail,
	}
	for _, entry := range run.RecentTrades(domain.DisplayTradeLimit) {
		view.RecentTrades = append(view.RecentTrades, tradeView{
			ID:          entry.ID,
			TimestampMs: entry.TimestampMs,
			Direction:   string(entry.Direction),
			AmountSOL:   entry.AmountSOL,
			Status:      string(entry.Status),
			TxSignature: entry.TxSignature,
			ErrorDetail: entry.ErrorDetail,
		})
	}
	return view
}

func (s *server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	lookups := s.gatherLookups(r.Context(), req.UserWallet, req.TokenAddress)

	cfg, verrs := campaign.Validate(campaign.RawInput{
		TokenAddress:    req.TokenAddress,
		TradeCount:      req.TradeCount,
		DurationMinutes: req.DurationMinutes,
		TradeSizeSOL:    req.TradeSizeSOL,
		SlippagePct:     req.SlippagePct,
		Mode:            req.Mode,
		DelayMinSeconds: req.DelayMinSeconds,
		DelayMaxSeconds: req.DelayMaxSeconds,
		Platforms:       req.Platforms,
		Intensity:       req.Intensity,
		UserWallet:      req.UserWallet,
	}, lookups)
	if verrs != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": verrs,
		})
		return
	}

	opts := pacing.Options{
		Bot:          s.bot,
		FeedURL:      s.cfg.Bot.WSURL,
		PollInterval: s.cfg.Bot.PollInterval(),
		Logger:       s.logger,
		Metrics:      s.metrics,
		Store:        s.store,
	}
	if cfg.Mode != domain.ModeTrending {
		opts.Executor = executor.NewDirectExecutor(executor.DirectExecutorOptions{
			Provider:    swap.NewClient(s.cfg.Swap.BaseURL, cfg.UserWallet),
			Wallet:      wallet.NewRemoteSigner(s.cfg.Signer.Endpoint, cfg.UserWallet),
			Broadcaster: s.rpc,
			Logger:      s.logger,
		})
	}

	engine := pacing.NewEngine(opts)
	run, err := engine.Start(context.Background(), *cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.CampaignsStarted.WithLabelValues(string(cfg.Mode)).Inc()
	startedAt := time.Now()
	go func() {
		<-engine.Done()
		final := engine.Snapshot()
		s.metrics.CampaignsCompleted.WithLabelValues(string(final.Status)).Inc()
		s.metrics.CampaignDuration.Observe(time.Since(startedAt).Seconds())
	}()

	s.mu.Lock()
	s.engines = append(s.engines, engine)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"run":      viewOf(&run),
		"warnings": campaign.Warnings(lookups),
	})
}

func (s *server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, viewOf(run))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "campaign not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, viewOf(run))
}

func (s *server) handleStopCampaign(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	engine := s.findEngine(id)
	if engine == nil {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	engine.Stop()

	snap := engine.Snapshot()
	writeJSON(w, http.StatusOK, viewOf(&snap))
}

// handleTrendingPlatforms proxies the platform catalog, degrading to the
// built-in default list when the service is unreachable.
func (s *server) handleTrendingPlatforms(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.bot.TrendingPlatforms(r.Context())
	if err != nil {
		s.logger.Printf("Platform catalog unavailable, serving default: %v", err)
		catalog = botapi.DefaultPlatformCatalog()
	}
	writeJSON(w, http.StatusOK, catalog)
}

func (s *server) handleTrendingCosts(w http.ResponseWriter, r *http.Request) {
	var req botapi.CostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	est, err := s.bot.MultiPlatformCosts(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// gatherLookups runs best-effort balance and pool checks for validation.
func (s *server) gatherLookups(ctx context.Context, walletPub, token string) campaign.Lookups {
	lookups := campaign.Lookups{WalletConnected: walletPub != ""}

	lookupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if walletPub != "" {
		balance, err := s.rpc.GetBalanceSOL(lookupCtx, walletPub)
		if err != nil {
			s.logger.Printf("Balance lookup failed: %v", err)
			lookups.BalanceUnavailable = true
		} else {
			lookups.BalanceSOL = balance
		}
	}
	if token != "" {
		pool, err := s.bot.CheckPool(lookupCtx, token)
		if err != nil {
			s.logger.Printf("Pool lookup failed: %v", err)
			lookups.PoolUnavailable = true
		} else {
			lookups.PoolExists = pool.Exists
		}
	}
	return lookups
}

// findEngine locates the engine owning the run with the given ID.
func (s *server) findEngine(id string) *pacing.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, engine := range s.engines {
		if engine.Snapshot().ID == id {
			return engine
		}
	}
	return nil
}

// stopAll stops every engine on shutdown.
func (s *server) stopAll() {
	s.mu.Lock()
	engines := append([]*pacing.Engine(nil), s.engines...)
	s.mu.Unlock()
	for _, engine := range engines {
		engine.Stop()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
