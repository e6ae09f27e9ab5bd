package routes

import (
	"net/http"

	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/api/handlers"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/api/middleware"
	"github.com/zatekoja/Providerbookabilitydesign/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	bookabilityHandler   *handlers.BookabilityHandler
	slotHandler          *handlers.SlotHandler
	appointmentHandler   *handlers.AppointmentHandler
	credentialingHandler *handlers.CredentialingHandler
	payerHandler         *handlers.PayerHandler

	cacheMiddleware *middleware.CacheMiddleware
	allowedOrigins  []string
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	bookabilityHandler *handlers.BookabilityHandler,
	slotHandler *handlers.SlotHandler,
	appointmentHandler *handlers.AppointmentHandler,
	credentialingHandler *handlers.CredentialingHandler,
	payerHandler *handlers.PayerHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		bookabilityHandler:   bookabilityHandler,
		slotHandler:          slotHandler,
		appointmentHandler:   appointmentHandler,
		credentialingHandler: credentialingHandler,
		payerHandler:         payerHandler,

		cacheMiddleware: cacheMiddleware,
		allowedOrigins:  allowedOrigins,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Bookability endpoints
	r.mux.HandleFunc("GET /api/bookability", r.bookabilityHandler.GetBookability)
	r.mux.HandleFunc("GET /api/bookability/live", r.bookabilityHandler.GetBookabilityLive)
	r.mux.HandleFunc("POST /api/bookability/refresh", r.bookabilityHandler.RefreshBookability)
	r.mux.HandleFunc("GET /api/bookability/reconcile", r.bookabilityHandler.ReconcileBookability)

	// Slot endpoints
	r.mux.HandleFunc("GET /api/slots", r.slotHandler.GetSlots)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.BookAppointment)
	r.mux.HandleFunc("DELETE /api/appointments/{id}", r.appointmentHandler.CancelAppointment)

	// Credentialing endpoints
	r.mux.HandleFunc("POST /api/credentialing/tasks", r.credentialingHandler.InstantiateTasks)
	r.mux.HandleFunc("GET /api/credentialing/tasks", r.credentialingHandler.ListTasks)
	r.mux.HandleFunc("POST /api/credentialing/activate", r.credentialingHandler.ActivateContract)

	// Payer endpoints
	r.mux.HandleFunc("GET /api/payers", r.payerHandler.ListPayers)
	r.mux.HandleFunc("GET /api/payers/{id}/acceptance", r.payerHandler.GetAcceptance)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so cached responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	handler = middleware.ResponseOptimization(handler)

	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
