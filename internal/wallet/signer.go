// Package wallet delegates transaction signing to an external wallet
// provider. Keys never enter this process.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-volume-bot/internal/executor"
)

// DefaultTimeout bounds each signing call.
const DefaultTimeout = 10 * time.Second

// RemoteSigner implements executor.Wallet against a wallet provider's
// HTTP signing endpoint.
type RemoteSigner struct {
	endpoint string
	pubkey   string
	client   *http.Client
}

// NewRemoteSigner creates a signer for the wallet identified by pubkey.
func NewRemoteSigner(endpoint, pubkey string) *RemoteSigner {
	return &RemoteSigner{
		endpoint: endpoint,
		pubkey:   pubkey,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// PublicKey returns the wallet's public key.
func (s *RemoteSigner) PublicKey() string {
	return s.pubkey
}

type signRequest struct {
	PublicKey   string `json:"public_key"`
	Transaction string `json:"transaction"` // base64, unsigned
}

type signResponse struct {
	SignedTransaction string `json:"signed_transaction"`
	Error             string `json:"error,omitempty"`
}

// SignTransaction submits an unsigned base64 transaction for signing.
func (s *RemoteSigner) SignTransaction(unsignedTx string) (string, error) {
	body, err := json.Marshal(signRequest{
		PublicKey:   s.pubkey,
		Transaction: unsignedTx,
	})
	if err != nil {
		return "", fmt.Errorf("marshal sign request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/sign", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read sign response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("signer returned %d: %s", resp.StatusCode, string(raw))
	}

	var sr signResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return "", fmt.Errorf("decode sign response: %w", err)
	}
	if sr.Error != "" {
		return "", fmt.Errorf("signer refused: %s", sr.Error)
	}
	if sr.SignedTransaction == "" {
		return "", fmt.Errorf("sign response missing transaction")
	}
	return sr.SignedTransaction, nil
}

var _ executor.Wallet = (*RemoteSigner)(nil)
