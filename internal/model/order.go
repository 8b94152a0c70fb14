package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// Payment statuses. Fulfilment status is an independent axis.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// OrderStatusPlaced is the initial fulfilment status of every order.
const OrderStatusPlaced = "placed"

// Order represents a customer order. Apart from payment fields (owned by the
// payment verifier) and fulfilment status (admin-owned), an order is
// immutable once created.
type Order struct {
	ID                uuid.UUID `json:"id" db:"id"`
	CustomerName      string    `json:"customerName" db:"customer_name"`
	Email             string    `json:"email" db:"email"`
	Phone             string    `json:"phone" db:"phone"`
	AddressLine       string    `json:"addressLine" db:"address_line"`
	City              string    `json:"city" db:"city"`
	State             string    `json:"state" db:"state"`
	PostalCode        string    `json:"postalCode" db:"postal_code"`
	Country           string    `json:"country" db:"country"`
	Subtotal          float64   `json:"subtotal" db:"subtotal"`
	Tax               float64   `json:"tax" db:"tax"`
	Shipping          float64   `json:"shipping" db:"shipping"`
	Total             float64   `json:"total" db:"total"`
	Currency          string    `json:"currency" db:"currency"`
	PaymentMethod     string    `json:"paymentMethod" db:"payment_method"`
	PaymentStatus     string    `json:"paymentStatus" db:"payment_status"`
	Status            string    `json:"status" db:"status"`
	GatewayOrderRef   *string   `json:"gatewayOrderRef,omitempty" db:"gateway_order_ref"`
	GatewayPaymentRef *string   `json:"gatewayPaymentRef,omitempty" db:"gateway_payment_ref"`
	Signature         *string   `json:"-" db:"signature"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a frozen snapshot of a resolved cart line at checkout time,
// not a live reference into the catalogue.
type OrderItem struct {
	ID           uuid.UUID `json:"-" db:"id"`
	OrderID      uuid.UUID `json:"-" db:"order_id"`
	ProductID    string    `json:"productId" db:"product_id"`
	Name         string    `json:"name" db:"name"`
	VariantLabel string    `json:"variant" db:"variant_label"`
	Color        string    `json:"color,omitempty" db:"color"`
	ImageURL     string    `json:"imageUrl" db:"image_url"`
	UnitPrice    float64   `json:"unitPrice" db:"unit_price"`
	Quantity     int       `json:"quantity" db:"quantity"`
}

// Transaction is one payment attempt tied to an order. An order may
// accumulate several (a failed attempt followed by a retry); each keeps its
// raw callback payload for audit and dispute resolution.
type Transaction struct {
	ID                uuid.UUID `json:"id" db:"id"`
	OrderID           uuid.UUID `json:"orderId" db:"order_id"`
	Amount            float64   `json:"amount" db:"amount"`
	Currency          string    `json:"currency" db:"currency"`
	PaymentMethod     string    `json:"paymentMethod" db:"payment_method"`
	Gateway           string    `json:"gateway" db:"gateway"`
	Status            string    `json:"status" db:"status"`
	GatewayOrderRef   *string   `json:"gatewayOrderRef,omitempty" db:"gateway_order_ref"`
	GatewayPaymentRef *string   `json:"gatewayPaymentRef,omitempty" db:"gateway_payment_ref"`
	RawPayload        *string   `json:"-" db:"raw_payload"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderPaymentPatch updates the payment-owned fields of an order. Nil
// pointers leave the stored value untouched.
type OrderPaymentPatch struct {
	PaymentStatus     string
	GatewayOrderRef   *string
	GatewayPaymentRef *string
	Signature         *string
}

// TransactionPatch updates a transaction after a gateway round-trip.
type TransactionPatch struct {
	Status            string
	GatewayOrderRef   *string
	GatewayPaymentRef *string
	RawPayload        *string
}

// Customer holds contact details captured at checkout.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Address is the shipping address captured at checkout.
type Address struct {
	Line       string `json:"line"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// CheckoutRequest is the request payload for placing an order.
type CheckoutRequest struct {
	Customer      Customer   `json:"customer"`
	Address       Address    `json:"address"`
	Items         []CartLine `json:"items"`
	PaymentMethod string     `json:"paymentMethod"`
}

// GatewayCheckout carries everything the client needs to open the payment
// widget for an online order.
type GatewayCheckout struct {
	IntentID  string `json:"intentId"`
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	PublicKey string `json:"publicKey"`
}

// CheckoutResponse is returned after a successful saga run.
type CheckoutResponse struct {
	OrderID       uuid.UUID        `json:"orderId"`
	TransactionID uuid.UUID        `json:"transactionId"`
	Totals        CartTotals       `json:"totals"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"paymentMethod"`
	Gateway       *GatewayCheckout `json:"gateway,omitempty"`
}

// VerifyRequest is the payment-confirmation callback payload.
type VerifyRequest struct {
	OrderID           uuid.UUID `json:"orderId"`
	GatewayOrderRef   string    `json:"gatewayOrderRef"`
	GatewayPaymentRef string    `json:"gatewayPaymentRef"`
	Signature         string    `json:"signature"`

	// RawPayload is the verbatim callback body, stored for audit.
	RawPayload string `json:"-"`
}

// VerifyResponse reports the terminal state of a verification attempt.
type VerifyResponse struct {
	OrderID       uuid.UUID `json:"orderId"`
	PaymentStatus string    `json:"paymentStatus"`
}

// OrderResponse is the read-model for a single order lookup.
type OrderResponse struct {
	Order Order       `json:"order"`
	Items []OrderItem `json:"items"`
}
