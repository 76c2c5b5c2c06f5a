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

// PlantRepository defines the interface for plant data access.
type PlantRepository interface {
	Create(ctx context.Context, plant *models.Plant) error
	Get(ctx context.Context, id uuid.UUID) (*models.Plant, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteByLand removes every plant under a land. Used on re-diagnosis,
	// where plants are replaced rather than updated in place.
	DeleteByLand(ctx context.Context, landID uuid.UUID) error
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Plant, error)
	// ListWithLandByFarmer returns each plant joined with its land, for the
	// crops view.
	ListWithLandByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.CropRecord, error)
	// ReduceDiseaseForFarmer lowers the disease percentage of every plant
	// owned by the farmer by the given number of points, floored at zero.
	ReduceDiseaseForFarmer(ctx context.Context, farmerID uuid.UUID, points float64) error
}

// plantRepository implements PlantRepository using PostgreSQL.
type plantRepository struct {
	db *database.DB
}

// NewPlantRepository creates a new plant repository.
func NewPlantRepository(db *database.DB) PlantRepository {
	return &plantRepository{db: db}
}

// Create inserts a new plant row referencing an existing land.
func (r *plantRepository) Create(ctx context.Context, plant *models.Plant) error {
	if plant.ID == uuid.Nil {
		plant.ID = uuid.New()
	}

	now := time.Now()
	plant.CreatedAt = now
	plant.UpdatedAt = now

	query := `
		INSERT INTO plants (id, land_id, plant_name, disease_percentage, previous_fertilizers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		plant.ID,
		plant.LandID,
		plant.PlantName,
		plant.DiseasePercentage,
		plant.PreviousFertilizers,
		plant.CreatedAt,
		plant.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create plant: %w", err)
	}

	return nil
}

// Get retrieves a plant by ID.
func (r *plantRepository) Get(ctx context.Context, id uuid.UUID) (*models.Plant, error) {
	query := `
		SELECT id, land_id, plant_name, disease_percentage, previous_fertilizers, created_at, updated_at
		FROM plants
		WHERE id = $1`

	var plant models.Plant
	err := r.db.QueryRow(ctx, query, id).Scan(
		&plant.ID,
		&plant.LandID,
		&plant.PlantName,
		&plant.DiseasePercentage,
		&plant.PreviousFertilizers,
		&plant.CreatedAt,
		&plant.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}

	return &plant, nil
}

// Delete removes a single plant row.
func (r *plantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM plants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeleteByLand removes every plant under a land.
func (r *plantRepository) DeleteByLand(ctx context.Context, landID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM plants WHERE land_id = $1`, landID)
	if err != nil {
		return fmt.Errorf("failed to delete plants for land: %w", err)
	}
	return nil
}

// ListByFarmer retrieves all plants across the farmer's lands.
func (r *plantRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.Plant, error) {
	query := `
		SELECT p.id, p.land_id, p.plant_name, p.disease_percentage, p.previous_fertilizers, p.created_at, p.updated_at
		FROM plants p
		JOIN lands l ON l.id = p.land_id
		WHERE l.farmer_id = $1
		ORDER BY p.created_at`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	defer rows.Close()

	var plants []*models.Plant
	for rows.Next() {
		var plant models.Plant
		err := rows.Scan(
			&plant.ID,
			&plant.LandID,
			&plant.PlantName,
			&plant.DiseasePercentage,
			&plant.PreviousFertilizers,
			&plant.CreatedAt,
			&plant.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		plants = append(plants, &plant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plants: %w", err)
	}

	return plants, nil
}

// ListWithLandByFarmer returns each plant joined with its land.
func (r *plantRepository) ListWithLandByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.CropRecord, error) {
	query := `
		SELECT p.id, p.land_id, p.plant_name, p.disease_percentage, p.previous_fertilizers, p.created_at, p.updated_at,
		       l.id, l.farmer_id, l.acres, l.location, l.created_at, l.updated_at
		FROM plants p
		JOIN lands l ON l.id = p.land_id
		WHERE l.farmer_id = $1
		ORDER BY p.created_at`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	defer rows.Close()

	var records []*models.CropRecord
	for rows.Next() {
		var rec models.CropRecord
		err := rows.Scan(
			&rec.Plant.ID,
			&rec.Plant.LandID,
			&rec.Plant.PlantName,
			&rec.Plant.DiseasePercentage,
			&rec.Plant.PreviousFertilizers,
			&rec.Plant.CreatedAt,
			&rec.Plant.UpdatedAt,
			&rec.Land.ID,
			&rec.Land.FarmerID,
			&rec.Land.Acres,
			&rec.Land.Location,
			&rec.Land.CreatedAt,
			&rec.Land.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crop record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating crop records: %w", err)
	}

	return records, nil
}

// ReduceDiseaseForFarmer lowers every plant of the farmer by the given
// points, floored at zero. A single statement keeps the farmer-wide
// reduction atomic.
func (r *plantRepository) ReduceDiseaseForFarmer(ctx context.Context, farmerID uuid.UUID, points float64) error {
	query := `
		UPDATE plants p
		SET disease_percentage = GREATEST(p.disease_percentage - $1, 0),
		    updated_at = $2
		FROM lands l
		WHERE p.land_id = l.id AND l.farmer_id = $3`

	_, err := r.db.Exec(ctx, query, points, time.Now(), farmerID)
	if err != nil {
		return fmt.Errorf("failed to reduce disease percentages: %w", err)
	}

	return nil
}

// Ensure plantRepository implements PlantRepository at compile time.
var _ PlantRepository = (*plantRepository)(nil)
