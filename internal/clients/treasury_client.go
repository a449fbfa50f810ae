// Package clients holds HTTP clients for external services.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zkdex-backend/internal/config"
	"zkdex-backend/internal/metrics"
)

// TreasuryClient talks to the custody service that actually moves token
// balances. The engine treats it as a TransferAgent; a failed transfer rolls
// back the surrounding store transaction.
type TreasuryClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewTreasuryClient creates a treasury client from configuration.
func NewTreasuryClient(cfg config.TreasuryConfig) *TreasuryClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &TreasuryClient{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// treasuryTransferRequest transfer request payload
type treasuryTransferRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Capability string `json:"capability,omitempty"`
	Amount     uint64 `json:"amount"`
}

// treasuryTransferResponse transfer response payload
type treasuryTransferResponse struct {
	Success    bool   `json:"success"`
	TransferID string `json:"transfer_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

// treasuryHealthResponse health check response payload
type treasuryHealthResponse struct {
	Status string `json:"status"`
}

// Transfer moves amount from one address to another. Vault-outbound calls
// carry the capability string of the derived vault authority.
func (c *TreasuryClient) Transfer(ctx context.Context, from, to, capability string, amount uint64) error {
	start := time.Now()

	request := treasuryTransferRequest{
		From:       from,
		To:         to,
		Capability: capability,
		Amount:     amount,
	}

	respData, err := c.makeRequest(ctx, "POST", "/api/v1/transfers", request)
	metrics.TreasuryTransferDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TreasuryTransfers.WithLabelValues("error").Inc()
		return fmt.Errorf("treasury transfer request failed: %w", err)
	}

	var response treasuryTransferResponse
	if err := json.Unmarshal(respData, &response); err != nil {
		metrics.TreasuryTransfers.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to parse treasury response: %w", err)
	}

	if !response.Success {
		metrics.TreasuryTransfers.WithLabelValues("rejected").Inc()
		return fmt.Errorf("treasury rejected transfer: %s", response.Error)
	}

	metrics.TreasuryTransfers.WithLabelValues("ok").Inc()
	return nil
}

// HealthCheck verifies the treasury endpoint is reachable.
func (c *TreasuryClient) HealthCheck(ctx context.Context) error {
	respData, err := c.makeRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return fmt.Errorf("treasury health check failed: %w", err)
	}

	var response treasuryHealthResponse
	if err := json.Unmarshal(respData, &response); err != nil {
		return fmt.Errorf("failed to parse health response: %w", err)
	}

	if response.Status != "ok" && response.Status != "healthy" {
		return fmt.Errorf("treasury unhealthy: %s", response.Status)
	}

	return nil
}

// makeRequest sends an HTTP request and returns the response body.
func (c *TreasuryClient) makeRequest(ctx context.Context, method, path string, data interface{}) ([]byte, error) {
	url := c.baseURL + path

	var body io.Reader
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "zkdex-backend/1.0")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("X-Service-Name", "zkdex-backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("treasury returned status %d: %s", resp.StatusCode, string(respData))
	}

	return respData, nil
}
