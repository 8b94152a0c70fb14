package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tech-kart/internal/config"

	"github.com/rs/zerolog"
)

// httpClient implements Client against a Razorpay-style orders API.
type httpClient struct {
	endpoint  string
	keyID     string
	keySecret string
	client    *http.Client
	logger    zerolog.Logger
}

// NewHTTPClient creates a payment gateway client from configuration.
func NewHTTPClient(cfg config.GatewayConfig, logger zerolog.Logger) Client {
	return &httpClient{
		endpoint:  cfg.Endpoint,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateIntent registers an expected charge with the gateway.
func (c *httpClient) CreateIntent(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*PaymentIntent, error) {
	body, err := json.Marshal(createIntentRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode intent request: %w", err)
	}

	url := c.endpoint + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	c.logger.Debug().
		Int64("amount", amount).
		Str("currency", currency).
		Str("receipt", receipt).
		Msg("creating payment intent")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("receipt", receipt).Msg("gateway request failed")
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("receipt", receipt).
			Str("body", string(snippet)).
			Msg("gateway rejected intent creation")
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if intent.ID == "" {
		return nil, fmt.Errorf("gateway response missing intent ID")
	}

	c.logger.Info().
		Str("intent_id", intent.ID).
		Int64("amount", intent.Amount).
		Str("receipt", receipt).
		Msg("payment intent created")

	return &intent, nil
}

// PublicKey returns the key ID used by the storefront widget.
func (c *httpClient) PublicKey() string {
	return c.keyID
}
