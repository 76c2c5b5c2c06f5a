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

// LandRepository defines the interface for land data access.
type LandRepository interface {
	Create(ctx context.Context, land *models.Land) error
	Get(ctx context.Context, id uuid.UUID) (*models.Land, error)
	// Update rewrites acreage and location of an existing land in place.
	Update(ctx context.Context, id uuid.UUID, acres float64, location string) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Land, error)
}

// landRepository implements LandRepository using PostgreSQL.
type landRepository struct {
	db *database.DB
}

// NewLandRepository creates a new land repository.
func NewLandRepository(db *database.DB) LandRepository {
	return &landRepository{db: db}
}

// Create inserts a new land row for a farmer.
func (r *landRepository) Create(ctx context.Context, land *models.Land) error {
	if land.ID == uuid.Nil {
		land.ID = uuid.New()
	}

	now := time.Now()
	land.CreatedAt = now
	land.UpdatedAt = now

	query := `
		INSERT INTO lands (id, farmer_id, acres, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		land.ID,
		land.FarmerID,
		land.Acres,
		land.Location,
		land.CreatedAt,
		land.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create land: %w", err)
	}

	return nil
}

// Get retrieves a land by ID.
func (r *landRepository) Get(ctx context.Context, id uuid.UUID) (*models.Land, error) {
	query := `
		SELECT id, farmer_id, acres, location, created_at, updated_at
		FROM lands
		WHERE id = $1`

	var land models.Land
	err := r.db.QueryRow(ctx, query, id).Scan(
		&land.ID,
		&land.FarmerID,
		&land.Acres,
		&land.Location,
		&land.CreatedAt,
		&land.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get land: %w", err)
	}

	return &land, nil
}

// Update rewrites acreage and location of an existing land.
func (r *landRepository) Update(ctx context.Context, id uuid.UUID, acres float64, location string) error {
	query := `
		UPDATE lands
		SET acres = $1, location = $2, updated_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(ctx, query, acres, location, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update land: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// Delete removes a land row. Plants under the land are removed by the
// ON DELETE CASCADE constraint.
func (r *landRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM lands WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete land: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// ListByFarmer retrieves all lands owned by a farmer.
func (r *landRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Land, error) {
	query := `
		SELECT id, farmer_id, acres, location, created_at, updated_at
		FROM lands
		WHERE farmer_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lands: %w", err)
	}
	defer rows.Close()

	var lands []*models.Land
	for rows.Next() {
		var land models.Land
		err := rows.Scan(
			&land.ID,
			&land.FarmerID,
			&land.Acres,
			&land.Location,
			&land.CreatedAt,
			&land.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan land: %w", err)
		}
		lands = append(lands, &land)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lands: %w", err)
	}

	return lands, nil
}

// Ensure landRepository implements LandRepository at compile time.
var _ LandRepository = (*landRepository)(nil)
