package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/farmcare-io/farmcare-engine/pkg/database"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	db      *database.DB
	version string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *database.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// RegisterRoutes registers the health endpoint. It is unauthenticated.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]string{
		"status":  status,
		"version": h.version,
	})
}
