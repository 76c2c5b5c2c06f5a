package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/database"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// FarmerRepository defines the interface for farmer data access.
type FarmerRepository interface {
	// Upsert creates the farmer row on first contact, or refreshes the email
	// if the row already exists. Farmers are never hard-deleted.
	Upsert(ctx context.Context, farmer *models.Farmer) error
	Get(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
	UpdateProfile(ctx context.Context, farmer *models.Farmer) error
}

// farmerRepository implements FarmerRepository using PostgreSQL.
type farmerRepository struct {
	db *database.DB
}

// NewFarmerRepository creates a new farmer repository.
func NewFarmerRepository(db *database.DB) FarmerRepository {
	return &farmerRepository{db: db}
}

// Upsert creates or refreshes a farmer row keyed by the auth-provider subject.
func (r *farmerRepository) Upsert(ctx context.Context, farmer *models.Farmer) error {
	now := time.Now()
	farmer.CreatedAt = now
	farmer.UpdatedAt = now

	query := `
		INSERT INTO farmers (id, name, email, phone, address, date_of_birth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		farmer.ID,
		farmer.Name,
		farmer.Email,
		farmer.Phone,
		farmer.Address,
		farmer.DateOfBirth,
		farmer.CreatedAt,
		farmer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert farmer: %w", err)
	}

	return nil
}

// Get retrieves a farmer by ID.
func (r *farmerRepository) Get(ctx context.Context, id uuid.UUID) (*models.Farmer, error) {
	query := `
		SELECT id, name, email, phone, address, date_of_birth, created_at, updated_at
		FROM farmers
		WHERE id = $1`

	var farmer models.Farmer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&farmer.ID,
		&farmer.Name,
		&farmer.Email,
		&farmer.Phone,
		&farmer.Address,
		&farmer.DateOfBirth,
		&farmer.CreatedAt,
		&farmer.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get farmer: %w", err)
	}

	return &farmer, nil
}

// UpdateProfile updates the farmer's editable profile attributes.
func (r *farmerRepository) UpdateProfile(ctx context.Context, farmer *models.Farmer) error {
	query := `
		UPDATE farmers
		SET name = $1, email = $2, phone = $3, address = $4, date_of_birth = $5, updated_at = $6
		WHERE id = $7`

	result, err := r.db.Exec(ctx, query,
		farmer.Name,
		farmer.Email,
		farmer.Phone,
		farmer.Address,
		farmer.DateOfBirth,
		time.Now(),
		farmer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update farmer: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Ensure farmerRepository implements FarmerRepository at compile time.
var _ FarmerRepository = (*farmerRepository)(nil)
