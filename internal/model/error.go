package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeMissingField          = "MISSING_FIELD"
	ErrCodeInvalidQuantity       = "INVALID_QUANTITY"
	ErrCodeInvalidPaymentMethod  = "INVALID_PAYMENT_METHOD"
	ErrCodeProductNotFound       = "PRODUCT_NOT_FOUND"
	ErrCodeInvalidVariant        = "INVALID_VARIANT_SELECTION"
	ErrCodeOutOfStock            = "OUT_OF_STOCK"
	ErrCodeInsufficientStock     = "INSUFFICIENT_STOCK"
	ErrCodeEmptyCartTotal        = "EMPTY_CART_TOTAL"
	ErrCodePersistenceFailure    = "PERSISTENCE_FAILURE"
	ErrCodeGatewayError          = "GATEWAY_ERROR"
	ErrCodeOrderNotFound         = "ORDER_NOT_FOUND"
	ErrCodeOrderNotOnlinePayment = "ORDER_NOT_ONLINE_PAYMENT"
	ErrCodeGatewayOrderMismatch  = "GATEWAY_ORDER_MISMATCH"
	ErrCodeSignatureInvalid      = "SIGNATURE_INVALID"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// DomainError is a business error with a stable code the UI can branch on.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors. Each maps to a distinct, stable user-visible message
// so the storefront can tell "pick a different configuration" apart from
// "reduce quantity" apart from "try again later".
var (
	ErrMissingField          = NewDomainError(ErrCodeMissingField, "A required field is missing")
	ErrInvalidQuantity       = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidPaymentMethod  = NewDomainError(ErrCodeInvalidPaymentMethod, "Payment method must be cod or online")
	ErrProductNotFound       = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrInvalidVariant        = NewDomainError(ErrCodeInvalidVariant, "Selected configuration is not available for this product")
	ErrOutOfStock            = NewDomainError(ErrCodeOutOfStock, "This configuration is currently out of stock")
	ErrInsufficientStock     = NewDomainError(ErrCodeInsufficientStock, "Not enough stock for the requested quantity")
	ErrEmptyCartTotal        = NewDomainError(ErrCodeEmptyCartTotal, "Cart total must be greater than zero")
	ErrPersistenceFailure    = NewDomainError(ErrCodePersistenceFailure, "Failed to save the order, please try again")
	ErrGatewayError          = NewDomainError(ErrCodeGatewayError, "Payment gateway is unavailable, please try again later")
	ErrOrderNotFound         = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrOrderNotOnlinePayment = NewDomainError(ErrCodeOrderNotOnlinePayment, "Order has no online payment to verify")
	ErrGatewayOrderMismatch  = NewDomainError(ErrCodeGatewayOrderMismatch, "Payment reference does not match this order")
	ErrSignatureInvalid      = NewDomainError(ErrCodeSignatureInvalid, "Payment signature verification failed")
)
