// Package swap provides a client for a Jupiter-style DEX aggregator. The
// aggregator prices swaps and builds unsigned transactions; this process
// never constructs swap instructions itself.
package swap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-volume-bot/internal/executor"
)

// DefaultTimeout bounds each aggregator call.
const DefaultTimeout = 10 * time.Second

// Client implements executor.SwapProvider against an aggregator's
// /quote and /swap endpoints.
type Client struct {
	baseURL    string
	userPubkey string
	client     *http.Client
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates an aggregator client building swaps for userPubkey.
func NewClient(baseURL, userPubkey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		userPubkey: userPubkey,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// quoteResponse is the aggregator's /quote body.
type quoteResponse struct {
	OutAmount      string          `json:"outAmount"`
	PriceImpactPct float64         `json:"priceImpactPct,string"`
	RoutePlan      json.RawMessage `json:"routePlan"`
}

// swapRequest is the aggregator's /swap body.
type swapRequest struct {
	QuoteResponse json.RawMessage `json:"quoteResponse"`
	UserPublicKey string          `json:"userPublicKey"`
	WrapUnwrapSOL bool            `json:"wrapAndUnwrapSol"`
}

// swapResponse is the aggregator's /swap response.
type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"` // base64, unsigned
}

// Quote prices one leg and returns an unsigned transaction ready to sign.
// An AmountIn of zero asks the aggregator to swap the wallet's full balance
// of the input mint (the sell leg of a pair).
func (c *Client) Quote(ctx context.Context, req executor.QuoteRequest) (*executor.SwapQuote, error) {
	q := url.Values{}
	q.Set("inputMint", req.InputMint)
	q.Set("outputMint", req.OutputMint)
	q.Set("slippageBps", strconv.Itoa(req.SlippageBps))
	if req.AmountIn > 0 {
		q.Set("amount", strconv.FormatUint(req.AmountIn, 10))
	} else {
		q.Set("swapMode", "ExactIn")
		q.Set("useFullBalance", "true")
	}

	raw, err := c.get(ctx, "/quote?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}

	outAmount, err := strconv.ParseUint(quote.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse outAmount %q: %w", quote.OutAmount, err)
	}

	unsignedTx, err := c.buildSwap(ctx, raw)
	if err != nil {
		return nil, err
	}

	return &executor.SwapQuote{
		AmountOut:     outAmount,
		UnsignedTx:    unsignedTx,
		PriceImpactPc: quote.PriceImpactPct,
	}, nil
}

// buildSwap exchanges a quote for an unsigned transaction.
func (c *Client) buildSwap(ctx context.Context, quote json.RawMessage) (string, error) {
	body, err := json.Marshal(swapRequest{
		QuoteResponse: quote,
		UserPublicKey: c.userPubkey,
		WrapUnwrapSOL: true,
	})
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swap", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create swap request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("swap request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read swap response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("swap returned %d: %s", resp.StatusCode, string(raw))
	}

	var sr swapResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if sr.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return sr.SwapTransaction, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

var _ executor.SwapProvider = (*Client)(nil)
