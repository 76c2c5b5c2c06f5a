package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmcare-io/farmcare-engine/pkg/database"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// DiagnosisRepository defines the interface for plant-diagnosis data access.
// Diagnosis rows are append-only; they are created once per successful
// classification and never mutated.
type DiagnosisRepository interface {
	Create(ctx context.Context, diagnosis *models.PlantDiagnosis) error
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.PlantDiagnosis, error)
}

// diagnosisRepository implements DiagnosisRepository using PostgreSQL.
type diagnosisRepository struct {
	db *database.DB
}

// NewDiagnosisRepository creates a new diagnosis repository.
func NewDiagnosisRepository(db *database.DB) DiagnosisRepository {
	return &diagnosisRepository{db: db}
}

// Create inserts a diagnosis row for a farmer.
func (r *diagnosisRepository) Create(ctx context.Context, diagnosis *models.PlantDiagnosis) error {
	if diagnosis.ID == uuid.Nil {
		diagnosis.ID = uuid.New()
	}
	diagnosis.CreatedAt = time.Now()

	query := `
		INSERT INTO plant_diagnosis (id, farmer_id, status, predicted_class, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		diagnosis.ID,
		diagnosis.FarmerID,
		diagnosis.Status,
		diagnosis.PredictedClass,
		diagnosis.Confidence,
		diagnosis.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create diagnosis: %w", err)
	}

	return nil
}

// ListByFarmer retrieves all diagnoses for a farmer, newest first.
func (r *diagnosisRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.PlantDiagnosis, error) {
	query := `
		SELECT id, farmer_id, status, predicted_class, confidence, created_at
		FROM plant_diagnosis
		WHERE farmer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list diagnoses: %w", err)
	}
	defer rows.Close()

	var diagnoses []*models.PlantDiagnosis
	for rows.Next() {
		var d models.PlantDiagnosis
		err := rows.Scan(
			&d.ID,
			&d.FarmerID,
			&d.Status,
			&d.PredictedClass,
			&d.Confidence,
			&d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan diagnosis: %w", err)
		}
		diagnoses = append(diagnoses, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diagnoses: %w", err)
	}

	return diagnoses, nil
}

// Ensure diagnosisRepository implements DiagnosisRepository at compile time.
var _ DiagnosisRepository = (*diagnosisRepository)(nil)
