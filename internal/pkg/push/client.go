package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Message is a single topic-addressed push notification.
type Message struct {
	Topic string                 `json:"topic"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// Sender delivers push messages. Implementations must be safe for concurrent
// use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client talks to the push gateway over HTTP. Requests are authenticated with
// an OAuth2 client-credentials token; the token source caches and refreshes
// tokens internally.
type Client struct {
	gatewayURL string
	httpClient *http.Client
}

type Config struct {
	GatewayURL   string
	TokenURL     string
	ClientID     string
	ClientSecret string
}

func NewClient(cfg Config) *Client {
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := cc.Client(context.Background())
	httpClient.Timeout = 10 * time.Second

	return &Client{
		gatewayURL: cfg.GatewayURL,
		httpClient: httpClient,
	}
}

// Send posts a single message to the gateway. Callers treat failures as
// best-effort; the owning state transition never depends on the result.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NopSender discards all messages. Used when no push gateway is configured.
type NopSender struct{}

func (NopSender) Send(ctx context.Context, msg Message) error { return nil }
