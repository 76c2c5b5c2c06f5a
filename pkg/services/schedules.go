package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
)

// ScheduleView is a treatment schedule with its derived display status.
type ScheduleView struct {
	models.TreatmentSchedule
	Status string `json:"status"`
}

// ScheduleSummary holds the per-status counts for a schedule listing.
type ScheduleSummary struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
	Completed int `json:"completed"`
}

// ScheduleService lists treatment schedules and handles completion toggles.
type ScheduleService struct {
	schedules repositories.ScheduleRepository
	plants    repositories.PlantRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(
	schedules repositories.ScheduleRepository,
	plants repositories.PlantRepository,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		plants:    plants,
		logger:    logger.Named("schedule_service"),
		now:       time.Now,
	}
}

// List returns the farmer's schedules ordered by date, each with a derived
// status of completed, overdue, or pending, plus the per-status counts.
func (s *ScheduleService) List(ctx context.Context, farmerID uuid.UUID) ([]*ScheduleView, *ScheduleSummary, error) {
	schedules, err := s.schedules.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	views := make([]*ScheduleView, 0, len(schedules))
	summary := &ScheduleSummary{Total: len(schedules)}
	for _, schedule := range schedules {
		status := schedule.StatusAt(now)
		switch status {
		case models.ScheduleStatusCompleted:
			summary.Completed++
		case models.ScheduleStatusOverdue:
			summary.Overdue++
		default:
			summary.Pending++
		}
		views = append(views, &ScheduleView{
			TreatmentSchedule: *schedule,
			Status:            status,
		})
	}

	return views, summary, nil
}

// SetCompleted toggles the completed flag of one schedule owned by the
// farmer. The first transition from pending to completed also reduces the
// disease percentage of every plant the farmer owns. Un-completing a schedule
// does not restore the percentage.
func (s *ScheduleService) SetCompleted(ctx context.Context, farmerID, scheduleID uuid.UUID, completed bool) (*ScheduleView, error) {
	schedule, err := s.schedules.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.FarmerID != farmerID {
		return nil, fmt.Errorf("%w: schedule %s", apperrors.ErrNotFound, scheduleID)
	}

	wasCompleted := schedule.Completed
	if err := s.schedules.SetCompleted(ctx, scheduleID, completed); err != nil {
		return nil, err
	}
	schedule.Completed = completed

	if completed && !wasCompleted {
		if err := s.plants.ReduceDiseaseForFarmer(ctx, farmerID, models.TreatmentDiseaseReduction); err != nil {
			return nil, err
		}
		s.logger.Info("Treatment completed, disease percentages reduced",
			zap.String("farmer_id", farmerID.String()),
			zap.String("schedule_id", scheduleID.String()))
	}

	return &ScheduleView{
		TreatmentSchedule: *schedule,
		Status:            schedule.StatusAt(s.now()),
	}, nil
}
