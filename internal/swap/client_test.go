package swap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"solana-volume-bot/internal/executor"
)

const quoteBody = `{"outAmount":"123456","priceImpactPct":"0.12","routePlan":[{"swapInfo":{"label":"Raydium"}}]}`

func aggregatorServer(t *testing.T, checkQuote func(q map[string][]string)) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		if checkQuote != nil {
			checkQuote(r.URL.Query())
		}
		w.Write([]byte(quoteBody))
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		var req swapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode swap request: %v", err)
		}
		if req.UserPublicKey != "wallet-pub" {
			t.Errorf("expected wallet-pub, got %s", req.UserPublicKey)
		}
		if !req.WrapUnwrapSOL {
			t.Error("expected wrapAndUnwrapSol set")
		}
		// The raw quote is passed back verbatim.
		if !strings.Contains(string(req.QuoteResponse), `"outAmount":"123456"`) {
			t.Errorf("quote not echoed to /swap: %s", req.QuoteResponse)
		}
		json.NewEncoder(w).Encode(swapResponse{SwapTransaction: "unsigned-b64"})
	})
	return httptest.NewServer(mux)
}

func TestQuote_BuyLeg(t *testing.T) {
	srv := aggregatorServer(t, func(q map[string][]string) {
		if got := q["amount"]; len(got) != 1 || got[0] != "50000000" {
			t.Errorf("expected amount=50000000, got %v", got)
		}
		if got := q["slippageBps"]; len(got) != 1 || got[0] != "150" {
			t.Errorf("expected slippageBps=150, got %v", got)
		}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "wallet-pub")
	quote, err := client.Quote(context.Background(), executor.QuoteRequest{
		InputMint:   executor.WSOLMint,
		OutputMint:  "mint-1",
		AmountIn:    50_000_000,
		SlippageBps: 150,
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if quote.AmountOut != 123456 {
		t.Errorf("expected out amount 123456, got %d", quote.AmountOut)
	}
	if quote.UnsignedTx != "unsigned-b64" {
		t.Errorf("expected unsigned tx, got %s", quote.UnsignedTx)
	}
	if quote.PriceImpactPc != 0.12 {
		t.Errorf("expected 0.12 impact, got %f", quote.PriceImpactPc)
	}
}

func TestQuote_SellLegFullBalance(t *testing.T) {
	srv := aggregatorServer(t, func(q map[string][]string) {
		if _, ok := q["amount"]; ok {
			t.Error("sell leg must not fix an amount")
		}
		if got := q["useFullBalance"]; len(got) != 1 || got[0] != "true" {
			t.Errorf("expected useFullBalance=true, got %v", got)
		}
	})
	defer srv.Close()

	client := NewClient(srv.URL, "wallet-pub")
	if _, err := client.Quote(context.Background(), executor.QuoteRequest{
		InputMint:   "mint-1",
		OutputMint:  executor.WSOLMint,
		AmountIn:    0,
		SlippageBps: 100,
	}); err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
}

func TestQuote_SwapMissingTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quoteBody))
	})
	mux.HandleFunc("/swap", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewClient(srv.URL, "wallet-pub")
	_, err := client.Quote(context.Background(), executor.QuoteRequest{
		InputMint:  executor.WSOLMint,
		OutputMint: "mint-1",
		AmountIn:   1,
	})
	if err == nil || !strings.Contains(err.Error(), "missing transaction") {
		t.Errorf("expected missing transaction error, got %v", err)
	}
}

func TestQuote_AggregatorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route found", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "wallet-pub")
	_, err := client.Quote(context.Background(), executor.QuoteRequest{
		InputMint:  executor.WSOLMint,
		OutputMint: "mint-1",
		AmountIn:   1,
	})
	if err == nil || !strings.Contains(err.Error(), "no route found") {
		t.Errorf("expected aggregator error, got %v", err)
	}
}
