package handlers

import (
	"net/http"

	"github.com/noamgl/basketcompare/backend/internal/domain/providers"
)

// HealthHandler reports service liveness and which collectors are wired.
type HealthHandler struct {
	collectors []providers.CandidateCollector
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(collectors []providers.CandidateCollector) *HealthHandler {
	return &HealthHandler{collectors: collectors}
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.collectors))
	for _, c := range h.collectors {
		names = append(names, c.Name())
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"collectors": names,
	})
}
