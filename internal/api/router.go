package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/dealfunnel/internal/api/handlers"
	"github.com/wonny/dealfunnel/pkg/logger"
	"github.com/wonny/dealfunnel/pkg/metrics"
)

// RequestIDHeader carries the per-request correlation id
const RequestIDHeader = "X-Request-ID"

// Routes bundles everything the router dispatches to. Jobs, Live and Metrics may be nil.
type Routes struct {
	Funnel    *handlers.FunnelHandler
	Dashboard *handlers.DashboardHandler
	Jobs      *handlers.JobsHandler
	Live      http.Handler
	Metrics   *metrics.Metrics
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: routing is configured in this function only
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics.Handler()).Methods("GET")
	}

	// HTML dashboard
	r.HandleFunc("/", routes.Dashboard.Index).Methods("GET")
	r.HandleFunc("/dashboard", routes.Dashboard.Funnel).Methods("GET")
	r.HandleFunc("/dashboard/deals/{stage}", routes.Dashboard.Deals).Methods("GET")

	// JSON API
	api := r.PathPrefix("/api/funnel").Subrouter()
	api.HandleFunc("", routes.Funnel.GetFunnel).Methods("GET")
	api.HandleFunc("/refresh", routes.Funnel.Refresh).Methods("POST")
	api.HandleFunc("/dates", routes.Funnel.GetDates).Methods("GET")
	api.HandleFunc("/deals/{stage}", routes.Funnel.GetDeals).Methods("GET")

	if routes.Jobs != nil {
		r.HandleFunc("/api/jobs", routes.Jobs.GetJobs).Methods("GET")
	}

	if routes.Live != nil {
		r.Handle("/ws/live", routes.Live).Methods("GET")
	}

	// Apply middleware
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if routes.Metrics != nil {
		r.Use(routes.Metrics.Middleware)
	}

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "dealfunnel",
	})
}

// requestIDMiddleware keeps an incoming X-Request-ID or assigns a new one
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": r.Header.Get(RequestIDHeader),
				"duration":   time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error":      err,
						"path":       r.URL.Path,
						"request_id": r.Header.Get(RequestIDHeader),
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
