package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// DashboardHandler exposes the dashboard aggregates endpoint.
type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboard: dashboard,
		logger:    logger.Named("dashboard_handler"),
	}
}

// RegisterRoutes registers the dashboard endpoint behind authentication.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/dashboard", requireAuth(h.stats))
}

func (h *DashboardHandler) stats(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	stats, err := h.dashboard.Stats(r.Context(), farmerID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, stats)
}
