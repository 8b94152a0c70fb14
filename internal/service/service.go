package service

import (
	"context"
	"errors"

	"tech-kart/internal/model"

	"github.com/google/uuid"
)

// CheckoutService runs the two payment workflows of the store: the checkout
// saga and the payment-confirmation verification.
type CheckoutService interface {
	// PlaceOrder runs the checkout saga: resolve the cart, price it, reserve
	// stock, persist the order and its transaction, and (for online payment)
	// create a gateway payment intent. Any failure after stock reservation
	// compensates fully before the error is surfaced.
	PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.CheckoutResponse, error)

	// VerifyPayment validates an inbound payment confirmation and applies
	// the terminal payment state to the order and its latest transaction.
	// Safe to call repeatedly with the same inputs.
	VerifyPayment(ctx context.Context, req *model.VerifyRequest) (*model.VerifyResponse, error)

	// GetOrderByID retrieves an order with its line-item snapshots.
	GetOrderByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// isDomainError reports whether err is a business error safe to surface
// as-is, as opposed to an infrastructure failure.
func isDomainError(err error) bool {
	var de *model.DomainError
	return errors.As(err, &de)
}
