package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// FarmerHandler exposes the farmer profile endpoints.
type FarmerHandler struct {
	farmers *services.FarmerService
	logger  *zap.Logger
}

// NewFarmerHandler creates a new farmer handler.
func NewFarmerHandler(farmers *services.FarmerService, logger *zap.Logger) *FarmerHandler {
	return &FarmerHandler{
		farmers: farmers,
		logger:  logger.Named("farmer_handler"),
	}
}

// RegisterRoutes registers the farmer endpoints behind authentication.
func (h *FarmerHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/farmers/me", requireAuth(h.getProfile))
	mux.HandleFunc("PUT /api/farmers/me", requireAuth(h.updateProfile))
}

func (h *FarmerHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	// First authenticated contact creates the row from the token claims.
	if claims, ok := auth.GetClaims(r.Context()); ok {
		if err := h.farmers.EnsureRegistered(r.Context(), farmerID, claims.Name, claims.Email); err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	farmer, err := h.farmers.GetProfile(r.Context(), farmerID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, farmer)
}

func (h *FarmerHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	var update services.ProfileUpdate
	if err := decodeJSON(r, &update); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	farmer, err := h.farmers.UpdateProfile(r.Context(), farmerID, &update)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, farmer)
}
