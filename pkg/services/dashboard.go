package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
)

// maxRecentDiagnoses caps the diagnosis history shown on the dashboard.
const maxRecentDiagnoses = 5

// DashboardStats is the aggregate view shown on the farmer's home screen.
type DashboardStats struct {
	TotalLands          int                      `json:"total_lands"`
	TotalAcres          float64                  `json:"total_acres"`
	TotalPlants         int                      `json:"total_plants"`
	AverageDiseasePct   float64                  `json:"average_disease_percentage"`
	PendingSchedules    int                      `json:"pending_schedules"`
	OverdueSchedules    int                      `json:"overdue_schedules"`
	CompletedSchedules  int                      `json:"completed_schedules"`
	DiseaseDistribution map[string]int           `json:"disease_distribution"`
	RecentDiagnoses     []*models.PlantDiagnosis `json:"recent_diagnoses"`
	LatestDiagnosis     *models.PlantDiagnosis   `json:"latest_diagnosis,omitempty"`
}

// DashboardService aggregates per-farmer statistics.
type DashboardService struct {
	lands     repositories.LandRepository
	plants    repositories.PlantRepository
	schedules repositories.ScheduleRepository
	diagnoses repositories.DiagnosisRepository
	now       func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	lands repositories.LandRepository,
	plants repositories.PlantRepository,
	schedules repositories.ScheduleRepository,
	diagnoses repositories.DiagnosisRepository,
) *DashboardService {
	return &DashboardService{
		lands:     lands,
		plants:    plants,
		schedules: schedules,
		diagnoses: diagnoses,
		now:       time.Now,
	}
}

// Stats computes the dashboard aggregates for one farmer.
func (s *DashboardService) Stats(ctx context.Context, farmerID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{
		DiseaseDistribution: make(map[string]int),
	}

	lands, err := s.lands.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	stats.TotalLands = len(lands)
	for _, land := range lands {
		stats.TotalAcres += land.Acres
	}

	plants, err := s.plants.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	stats.TotalPlants = len(plants)
	if len(plants) > 0 {
		var total float64
		for _, plant := range plants {
			total += plant.DiseasePercentage
		}
		stats.AverageDiseasePct = total / float64(len(plants))
	}

	schedules, err := s.schedules.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, schedule := range schedules {
		switch schedule.StatusAt(now) {
		case models.ScheduleStatusCompleted:
			stats.CompletedSchedules++
		case models.ScheduleStatusOverdue:
			stats.OverdueSchedules++
		default:
			stats.PendingSchedules++
		}
	}

	diagnoses, err := s.diagnoses.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	for _, diagnosis := range diagnoses {
		stats.DiseaseDistribution[diagnosis.PredictedClass]++
	}
	if len(diagnoses) > 0 {
		stats.LatestDiagnosis = diagnoses[0]
		if len(diagnoses) > maxRecentDiagnoses {
			diagnoses = diagnoses[:maxRecentDiagnoses]
		}
		stats.RecentDiagnoses = diagnoses
	}

	return stats, nil
}
