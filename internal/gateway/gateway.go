// Package gateway talks to the external payment provider and owns the
// HMAC signature scheme used to authenticate payment confirmations.
package gateway

import "context"

// PaymentIntent is the gateway-side record of an expected charge. Amount is
// in the currency's minor units (e.g. paise for INR).
type PaymentIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Client creates payment intents against the external gateway.
type Client interface {
	// CreateIntent registers an expected charge with the gateway. amount is
	// in minor units; receipt is the merchant-side reference (our order ID).
	CreateIntent(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*PaymentIntent, error)

	// PublicKey returns the key the storefront needs to initialise the
	// payment widget. It is safe to expose to clients.
	PublicKey() string
}
