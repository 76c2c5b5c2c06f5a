package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
)

// CropService backs the crops view: each plant joined with its land and, when
// one can be matched, the latest diagnosis.
type CropService struct {
	plants    repositories.PlantRepository
	lands     repositories.LandRepository
	diagnoses repositories.DiagnosisRepository
	schedules repositories.ScheduleRepository
	logger    *zap.Logger
}

// NewCropService creates a new crop service.
func NewCropService(
	plants repositories.PlantRepository,
	lands repositories.LandRepository,
	diagnoses repositories.DiagnosisRepository,
	schedules repositories.ScheduleRepository,
	logger *zap.Logger,
) *CropService {
	return &CropService{
		plants:    plants,
		lands:     lands,
		diagnoses: diagnoses,
		schedules: schedules,
		logger:    logger.Named("crop_service"),
	}
}

// List returns the farmer's crops. Diagnoses carry no plant reference, so
// each crop gets the newest diagnosis whose predicted class contains the
// plant name, or none at all.
func (s *CropService) List(ctx context.Context, farmerID uuid.UUID) ([]*models.CropRecord, error) {
	records, err := s.plants.ListWithLandByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	diagnoses, err := s.diagnoses.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	for _, record := range records {
		// ListByFarmer returns newest first, so the first match wins.
		for _, diagnosis := range diagnoses {
			if diagnosis.MatchesPlant(record.Plant.PlantName) {
				record.Diagnosis = diagnosis
				break
			}
		}
	}

	return records, nil
}

// getOwned loads a plant and its land, verifying the land belongs to the
// farmer. Plants of other farmers report not-found.
func (s *CropService) getOwned(ctx context.Context, farmerID, plantID uuid.UUID) (*models.Plant, *models.Land, error) {
	plant, err := s.plants.Get(ctx, plantID)
	if err != nil {
		return nil, nil, err
	}

	land, err := s.lands.Get(ctx, plant.LandID)
	if err != nil {
		return nil, nil, err
	}
	if land.FarmerID != farmerID {
		return nil, nil, fmt.Errorf("%w: plant %s", apperrors.ErrNotFound, plantID)
	}

	return plant, land, nil
}

// EditContext resolves the land behind a plant for a re-diagnosis run.
func (s *CropService) EditContext(ctx context.Context, farmerID, plantID uuid.UUID) (*models.EditContext, error) {
	_, land, err := s.getOwned(ctx, farmerID, plantID)
	if err != nil {
		return nil, err
	}

	return &models.EditContext{
		LandID:   land.ID,
		Acres:    land.Acres,
		Location: land.Location,
	}, nil
}

// Delete removes a crop: the plant, its land, and every schedule of the
// farmer. Schedules are farmer-scoped, so deleting one crop clears them all.
func (s *CropService) Delete(ctx context.Context, farmerID, plantID uuid.UUID) error {
	plant, land, err := s.getOwned(ctx, farmerID, plantID)
	if err != nil {
		return err
	}

	if err := s.plants.Delete(ctx, plant.ID); err != nil {
		return err
	}
	if err := s.lands.Delete(ctx, land.ID); err != nil {
		return err
	}
	if err := s.schedules.DeleteByFarmer(ctx, farmerID); err != nil {
		return err
	}

	s.logger.Info("Crop deleted",
		zap.String("farmer_id", farmerID.String()),
		zap.String("plant_id", plantID.String()),
		zap.String("land_id", land.ID.String()))

	return nil
}
