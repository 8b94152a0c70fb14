package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"tech-kart/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to do.
		return
	}
}

// writeError writes a coded error response.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps a service error to an HTTP response. Domain errors
// keep their stable code so the storefront can branch on it; anything else
// collapses to a generic 500.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
		return
	}

	writeError(w, statusForCode(domainErr.Code), domainErr.Code, domainErr.Message, logger)
}

func statusForCode(code string) int {
	switch code {
	case model.ErrCodeMissingField,
		model.ErrCodeInvalidQuantity,
		model.ErrCodeInvalidPaymentMethod,
		model.ErrCodeProductNotFound,
		model.ErrCodeInvalidVariant,
		model.ErrCodeEmptyCartTotal,
		model.ErrCodeOrderNotOnlinePayment,
		model.ErrCodeGatewayOrderMismatch,
		model.ErrCodeSignatureInvalid:
		return http.StatusBadRequest
	case model.ErrCodeOutOfStock, model.ErrCodeInsufficientStock:
		return http.StatusConflict
	case model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeGatewayError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
