package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"tech-kart/internal/model"
	"tech-kart/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Callback bodies from the gateway are small JSON documents.
const maxVerifyBodyBytes = 64 * 1024

// CheckoutHandler handles checkout and payment HTTP requests.
type CheckoutHandler struct {
	service   service.CheckoutService
	publicKey string
	logger    zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, publicKey string, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:   service,
		publicKey: publicKey,
		logger:    logger.With().Str("handler", "checkout").Logger(),
	}
}

// PlaceOrder handles POST /api/checkout requests.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	resp, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// VerifyPayment handles POST /api/payments/verify requests. The body is read
// verbatim before decoding: the exact bytes the gateway sent are archived for
// audit, not a re-serialisation.
func (h *CheckoutHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxVerifyBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "failed to read request body", h.logger)
		return
	}

	var req model.VerifyRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.OrderID == uuid.Nil || req.GatewayOrderRef == "" || req.GatewayPaymentRef == "" || req.Signature == "" {
		writeDomainError(w, model.ErrMissingField, h.logger)
		return
	}
	req.RawPayload = string(body)

	resp, err := h.service.VerifyPayment(r.Context(), &req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetOrder handles GET /api/orders/{id} requests.
func (h *CheckoutHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/orders/{id}
	path := r.URL.Path
	if len(path) <= len("/api/orders/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return
	}
	orderIDStr := path[len("/api/orders/"):]

	orderID, err := uuid.Parse(orderIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID format", h.logger)
		return
	}

	resp, err := h.service.GetOrderByID(r.Context(), orderID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GatewayKey handles GET /api/payments/key requests. The storefront needs the
// publishable key to open the payment widget.
func (h *CheckoutHandler) GatewayKey(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeInternalError, "method not allowed", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"keyId": h.publicKey})
}
