package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// CropHandler exposes the crops-view endpoints.
type CropHandler struct {
	crops  *services.CropService
	logger *zap.Logger
}

// NewCropHandler creates a new crop handler.
func NewCropHandler(crops *services.CropService, logger *zap.Logger) *CropHandler {
	return &CropHandler{
		crops:  crops,
		logger: logger.Named("crop_handler"),
	}
}

// RegisterRoutes registers the crop endpoints behind authentication.
func (h *CropHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/crops", requireAuth(h.list))
	mux.HandleFunc("DELETE /api/crops/{id}", requireAuth(h.delete))
}

func (h *CropHandler) list(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	records, err := h.crops.List(r.Context(), farmerID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"crops": records})
}

func (h *CropHandler) delete(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	plantID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid crop ID"})
		return
	}

	if err := h.crops.Delete(r.Context(), farmerID, plantID); err != nil {
		WriteError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
