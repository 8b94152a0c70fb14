// Package notification delivers order confirmations. Delivery is strictly
// best-effort: the checkout saga dispatches confirmations after its terminal
// state is committed, and a delivery failure is logged, never propagated.
package notification

import "context"

// OrderConfirmation is the payload sent after a successful checkout.
type OrderConfirmation struct {
	OrderID       string  `json:"orderId"`
	CustomerName  string  `json:"customerName"`
	Email         string  `json:"email"`
	Total         float64 `json:"total"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"paymentMethod"`
}

// Sender delivers order confirmations.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}

// NopSender discards confirmations. Used when notifications are disabled.
type NopSender struct{}

func (NopSender) SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	return nil
}
