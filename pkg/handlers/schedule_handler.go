package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/auth"
	"github.com/farmcare-io/farmcare-engine/pkg/services"
)

// ScheduleHandler exposes the treatment-schedule endpoints.
type ScheduleHandler struct {
	schedules *services.ScheduleService
	logger    *zap.Logger
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(schedules *services.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		schedules: schedules,
		logger:    logger.Named("schedule_handler"),
	}
}

// RegisterRoutes registers the schedule endpoints behind authentication.
func (h *ScheduleHandler) RegisterRoutes(mux *http.ServeMux, requireAuth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/schedules", requireAuth(h.list))
	mux.HandleFunc("PATCH /api/schedules/{id}", requireAuth(h.setCompleted))
}

func (h *ScheduleHandler) list(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	views, summary, err := h.schedules.List(r.Context(), farmerID)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"schedules": views,
		"summary":   summary,
	})
}

type setCompletedRequest struct {
	Completed bool `json:"completed"`
}

func (h *ScheduleHandler) setCompleted(w http.ResponseWriter, r *http.Request) {
	farmerID, err := auth.FarmerIDFromContext(r.Context())
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	scheduleID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid schedule ID"})
		return
	}

	var req setCompletedRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	view, err := h.schedules.SetCompleted(r.Context(), farmerID, scheduleID, req.Completed)
	if err != nil {
		WriteError(w, h.logger, err)
		return
	}

	WriteJSON(w, http.StatusOK, view)
}
