package http

import (
	"net/http"

	"committee-notifier/internal/handlers"
	"committee-notifier/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the operator API. When authMiddleware is nil the debt
// endpoints are not exposed.
func NewRouter(
	debtHandler *handlers.DebtHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.PanicRecovery)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.MetricsMiddleware)

	// Public routes
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Protected routes - committee and admin only
	if authMiddleware != nil {
		api := r.PathPrefix("/api/debts").Subrouter()
		api.Use(authMiddleware.Authenticate)
		api.HandleFunc("/preview", debtHandler.Preview).Methods("GET")
		api.HandleFunc("/send", debtHandler.Send).Methods("POST")
	}

	return middleware.NewCORS(allowedOrigins)(r)
}
