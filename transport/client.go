// Package transport implements the HTTP layer of the SDK: payment-intent
// creation, confirmation and lookup, and receipt-document retrieval.
// Everything here is routine plumbing around the pure verification core.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solpay/x402-go/types"
)

const (
	intentsPath = "/api/v1/payment_intents"

	defaultTimeout    = 30 * time.Second
	defaultRetryCount = 3
	retryBaseDelay    = 500 * time.Millisecond
)

// Client talks to the SolPay API. It is safe for concurrent use.
type Client struct {
	apiBase    string
	apiKey     string
	httpClient *http.Client
	retryCount int
}

// NewClient creates a transport client for the given API base URL.
// A nil httpClient gets a default with the given timeout applied.
func NewClient(apiBase, apiKey string, timeout time.Duration, retryCount int, httpClient *http.Client) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retryCount < 0 {
		retryCount = defaultRetryCount
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiBase:    apiBase,
		apiKey:     apiKey,
		httpClient: httpClient,
		retryCount: retryCount,
	}
}

// apiError is the error envelope the SolPay API returns on non-2xx status.
type apiError struct {
	Error string `json:"error"`
}

// CreateIntent posts a new payment intent.
func (c *Client) CreateIntent(ctx context.Context, body map[string]any) (*types.PaymentIntent, error) {
	return c.doIntent(ctx, http.MethodPost, c.apiBase+intentsPath, body)
}

// ConfirmIntent confirms an intent with an on-chain transaction signature.
func (c *Client) ConfirmIntent(ctx context.Context, intentID, signature string) (*types.PaymentIntent, error) {
	url := fmt.Sprintf("%s%s/%s/confirm", c.apiBase, intentsPath, intentID)
	return c.doIntent(ctx, http.MethodPost, url, map[string]any{
		"transaction_signature": signature,
	})
}

// GetIntent fetches an intent by identifier.
func (c *Client) GetIntent(ctx context.Context, intentID string) (*types.PaymentIntent, error) {
	url := fmt.Sprintf("%s%s/%s", c.apiBase, intentsPath, intentID)
	return c.doIntent(ctx, http.MethodGet, url, nil)
}

// FetchReceipt retrieves the raw receipt document at url. Fetch failures
// are transport errors, a category of their own: they must never be
// conflated with a digest mismatch downstream.
func (c *Client) FetchReceipt(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.doWithRetry(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrReceiptFetchFailed,
			Message: "could not retrieve receipt: " + err.Error(),
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &types.SolPayError{
			Code:    types.ErrReceiptFetchFailed,
			Message: fmt.Sprintf("could not retrieve receipt: HTTP %d", resp.StatusCode),
		}
	}
	return io.ReadAll(resp.Body)
}

// doIntent runs a request whose response body is a PaymentIntent.
func (c *Client) doIntent(ctx context.Context, method, url string, body map[string]any) (*types.PaymentIntent, error) {
	resp, err := c.doWithRetry(ctx, method, url, body)
	if err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrTransportError,
			Message: err.Error(),
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrTransportError,
			Message: "failed to read response body: " + err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return nil, &types.SolPayError{
				Code:    types.ErrTransportError,
				Message: apiErr.Error,
			}
		}
		return nil, &types.SolPayError{
			Code:    types.ErrTransportError,
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		}
	}

	var intent types.PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, &types.SolPayError{
			Code:    types.ErrInvalidResponse,
			Message: "failed to parse payment intent: " + err.Error(),
		}
	}
	return &intent, nil
}

// doWithRetry issues the request, retrying transient failures (network
// errors and 5xx responses) with linear backoff. 4xx responses are
// returned immediately: retrying them cannot succeed.
func (c *Client) doWithRetry(ctx context.Context, method, url string, body map[string]any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBaseDelay):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 && attempt < c.retryCount {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.retryCount+1, lastErr)
}
