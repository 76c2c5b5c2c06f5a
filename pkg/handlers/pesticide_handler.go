package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// PesticideHandler exposes the static pesticide catalogue.
type PesticideHandler struct {
	pesticides *services.PesticideService
	logger     *zap.Logger
}

// NewPesticideHandler creates a new pesticide handler.
func NewPesticideHandler(pesticides *services.PesticideService, logger *zap.Logger) *PesticideHandler {
	return &PesticideHandler{
		pesticides: pesticides,
		logger:     logger.Named("pesticide_handler"),
	}
}

// RegisterRoutes registers the pesticide endpoints behind authentication.
func (h *PesticideHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/pesticides", requireAuth(h.list))
}

func (h *PesticideHandler) list(w http.ResponseWriter, r *http.Request) {
	crop := r.URL.Query().Get("crop")
	WriteJSON(w, http.StatusOK, map[string]any{
		"pesticides": h.pesticides.List(crop),
	})
}
