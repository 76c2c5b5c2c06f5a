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

// ProfileUpdate carries the editable farmer profile fields.
type ProfileUpdate struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

// FarmerService manages farmer rows. Identity comes from the hosted auth
// provider; rows here hold only profile data keyed by the token subject.
type FarmerService struct {
	farmers repositories.FarmerRepository
	logger  *zap.Logger
}

// NewFarmerService creates a new farmer service.
func NewFarmerService(farmers repositories.FarmerRepository, logger *zap.Logger) *FarmerService {
	return &FarmerService{
		farmers: farmers,
		logger:  logger.Named("farmer_service"),
	}
}

// EnsureRegistered creates the farmer row on first authenticated contact, or
// refreshes the email from the token on later ones.
func (s *FarmerService) EnsureRegistered(ctx context.Context, farmerID uuid.UUID, name, email string) error {
	farmer := &models.Farmer{
		ID:    farmerID,
		Name:  name,
		Email: email,
	}
	if err := s.farmers.Upsert(ctx, farmer); err != nil {
		return fmt.Errorf("failed to register farmer: %w", err)
	}
	return nil
}

// GetProfile returns the farmer's profile.
func (s *FarmerService) GetProfile(ctx context.Context, farmerID uuid.UUID) (*models.Farmer, error) {
	return s.farmers.Get(ctx, farmerID)
}

// UpdateProfile replaces the editable profile fields.
func (s *FarmerService) UpdateProfile(ctx context.Context, farmerID uuid.UUID, update *ProfileUpdate) (*models.Farmer, error) {
	if update.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	if update.Email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	farmer, err := s.farmers.Get(ctx, farmerID)
	if err != nil {
		return nil, err
	}

	farmer.Name = update.Name
	farmer.Email = update.Email
	farmer.Phone = update.Phone
	farmer.Address = update.Address
	farmer.DateOfBirth = update.DateOfBirth

	if err := s.farmers.UpdateProfile(ctx, farmer); err != nil {
		return nil, err
	}

	s.logger.Info("Farmer profile updated", zap.String("farmer_id", farmerID.String()))

	return farmer, nil
}
