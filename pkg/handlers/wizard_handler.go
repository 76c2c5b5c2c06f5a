package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// multipartOverheadBytes is headroom on top of the image limit for multipart
// boundaries and part headers.
const multipartOverheadBytes = 64 * 1024

// WizardHandler exposes the diagnosis-wizard endpoints.
type WizardHandler struct {
	wizard        *services.WizardService
	crops         *services.CropService
	farmers       *services.FarmerService
	maxImageBytes int64
	logger        *zap.Logger
}

// NewWizardHandler creates a new wizard handler.
func NewWizardHandler(
	wizard *services.WizardService,
	crops *services.CropService,
	farmers *services.FarmerService,
	maxImageBytes int64,
	logger *zap.Logger,
) *WizardHandler {
	return &WizardHandler{
		wizard:        wizard,
		crops:         crops,
		farmers:       farmers,
		maxImageBytes: maxImageBytes,
		logger:        logger.Named("wizard_handler"),
	}
}

// RegisterRoutes registers the wizard endpoints behind authentication.
func (h *WizardHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /api/wizard/runs", requireAuth(h.startRun))
	mux.HandleFunc("GET /api/wizard/runs/{id}", requireAuth(h.getRun))
	mux.HandleFunc("POST /api/wizard/runs/{id}/crop", requireAuth(h.selectCrop))
	mux.HandleFunc("POST /api/wizard/runs/{id}/analyze", requireAuth(h.analyze))
	mux.HandleFunc("POST /api/wizard/runs/{id}/land", requireAuth(h.submitLand))
	mux.HandleFunc("POST /api/wizard/runs/{id}/back", requireAuth(h.back))
}

type startRunRequest struct {
	// PlantID, when set, starts a re-diagnosis of the crop's land.
	PlantID *uuid.UUID `json:"plant_id"`
}

func (h *WizardHandler) startRun(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	// The farmer row must exist before the wizard completes so the report
	// email has an address to go to.
	if claims, ok := auth.GetClaims(r.Context()); ok {
		if err := h.farmers.EnsureRegistered(r.Context(), farmerID, claims.Name, claims.Email); err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	var req startRunRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
			return
		}
	}

	var edit *models.EditContext
	if req.PlantID != nil {
		edit, err = h.crops.EditContext(r.Context(), farmerID, *req.PlantID)
		if err != nil {
			WriteError(w, h.logger, err)
			return
		}
	}

	state, err := h.wizard.StartRun(r.Context(), farmerID, edit)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusCreated, state)
}

// runID extracts and parses the {id} path value.
func (h *WizardHandler) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid run ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *WizardHandler) getRun(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	state, err := h.wizard.GetRun(farmerID, runID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, state)
}

type selectCropRequest struct {
	Crop string `json:"crop"`
}

func (h *WizardHandler) selectCrop(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	var req selectCropRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	state, err := h.wizard.SelectCrop(r.Context(), farmerID, runID, req.Crop)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, state)
}

func (h *WizardHandler) analyze(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverheadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			WriteError(w, h.logger, apperrors.ErrImageTooLarge)
			return
		}
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Multipart field \"image\" is required"})
		return
	}
	defer file.Close()

	state, err := h.wizard.Analyze(r.Context(), farmerID, runID, &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, state)
}

func (h *WizardHandler) submitLand(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	var submission services.LandSubmission
	if err := decodeJSON(r, &submission); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	outcome, err := h.wizard.SubmitLand(r.Context(), farmerID, runID, &submission)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, outcome)
}

func (h *WizardHandler) back(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}
	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	state, err := h.wizard.Back(r.Context(), farmerID, runID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, state)
}
