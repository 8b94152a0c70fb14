package router

import (
	"net/http"
	"strings"

	"tech-kart/internal/handler"
	"tech-kart/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(checkoutHandler *handler.CheckoutHandler, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	checkoutRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/checkout" || r.URL.Path == "/api/checkout/" {
			checkoutHandler.PlaceOrder(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}
	mux.HandleFunc("/api/checkout", checkoutRouteHandler)
	mux.HandleFunc("/api/checkout/", checkoutRouteHandler)

	paymentRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments/verify", "/api/payments/verify/":
			checkoutHandler.VerifyPayment(w, r)
		case "/api/payments/key", "/api/payments/key/":
			checkoutHandler.GatewayKey(w, r)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}
	mux.HandleFunc("/api/payments/", paymentRouteHandler)

	orderRouteHandler := func(w http.ResponseWriter, r *http.Request) {
		// Only single-order lookups; order creation goes through /api/checkout.
		if strings.HasPrefix(r.URL.Path, "/api/orders/") && r.URL.Path != "/api/orders/" {
			checkoutHandler.GetOrder(w, r)
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}
	mux.HandleFunc("/api/orders", orderRouteHandler)
	mux.HandleFunc("/api/orders/", orderRouteHandler)

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
