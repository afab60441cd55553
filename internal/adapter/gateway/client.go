// Package gateway is the outbound client for the payment gateway's REST API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"order-webhook-service/internal/core/domain"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.PaymentCapturer against the gateway API using
// key id / key secret basic auth.
type Client struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient HTTPClient
}

// NewClient creates a gateway client. baseURL is e.g. https://api.razorpay.com/v1.
func NewClient(baseURL, keyID, keySecret string, httpClient HTTPClient) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		keySecret:  keySecret,
		httpClient: httpClient,
	}
}

type captureRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// StatusError is returned when the gateway answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}

// Capture posts {amount, currency} to /payments/{id}/capture.
func (c *Client) Capture(ctx context.Context, paymentID string, amount int64, currency string) (*domain.CaptureResult, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("capture: empty payment id")
	}

	body, err := json.Marshal(captureRequest{Amount: amount, Currency: currency})
	if err != nil {
		return nil, fmt.Errorf("capture: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/payments/%s/capture", c.baseURL, url.PathEscape(paymentID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("capture: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var result domain.CaptureResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("capture: decode response: %w", err)
	}
	return &result, nil
}
