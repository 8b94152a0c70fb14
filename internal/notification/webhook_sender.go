package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// webhookSender posts confirmations to the mail service's webhook endpoint.
type webhookSender struct {
	url    string
	client *http.Client
	logger zerolog.Logger
}

// NewWebhookSender creates a sender that delivers confirmations over HTTP.
func NewWebhookSender(url string, logger zerolog.Logger) Sender {
	return &webhookSender{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.With().Str("component", "notification-webhook").Logger(),
	}
}

func (s *webhookSender) SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("confirmation delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("confirmation endpoint returned status %d", resp.StatusCode)
	}

	s.logger.Debug().
		Str("order_id", msg.OrderID).
		Str("email", msg.Email).
		Msg("order confirmation delivered")

	return nil
}
