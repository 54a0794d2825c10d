// Package push provides the push-gateway client used when a user has no
// open live stream. Push is best-effort: gateway failures are logged and
// swallowed, never blocking the fan-out path.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Request is the JSON body sent to the push gateway.
type Request struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// response is the gateway's reply envelope.
type response struct {
	DeliveryID string `json:"delivery_id"`
}

// Client sends push notifications through the gateway's HTTP API.
type Client struct {
	gatewayURL string
	httpClient *http.Client
}

// NewClient creates a push-gateway client.
func NewClient(gatewayURL string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts one notification to the gateway and returns its delivery ID.
func (c *Client) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) (string, error) {
	if deviceToken == "" {
		return "", fmt.Errorf("device token is required")
	}

	payload, err := json.Marshal(Request{
		Token: deviceToken,
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		// The push went out; a malformed reply only costs us the ID.
		slog.Warn("Push gateway reply could not be decoded", "error", err)
		return "", nil
	}

	slog.Debug("Push notification accepted by gateway", "delivery_id", result.DeliveryID)
	return result.DeliveryID, nil
}
