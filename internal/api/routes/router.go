package routes

import (
	"net/http"

	"github.com/noamgl/basketcompare/backend/internal/api/handlers"
	"github.com/noamgl/basketcompare/backend/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	planHandler   *handlers.PlanHandler
	healthHandler *handlers.HealthHandler
}

// NewRouter creates a new router
func NewRouter(planHandler *handlers.PlanHandler, healthHandler *handlers.HealthHandler) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		planHandler:   planHandler,
		healthHandler: healthHandler,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /api/health", r.healthHandler.GetHealth)
	r.mux.HandleFunc("POST /api/plan", r.planHandler.CreatePlan)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
