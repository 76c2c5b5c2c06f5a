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

// ScheduleRepository defines the interface for treatment-schedule data access.
type ScheduleRepository interface {
	// CreateBatch inserts all given schedules in one transaction: either every
	// recommendation entry lands, or none do.
	CreateBatch(ctx context.Context, schedules []*models.TreatmentSchedule) error
	Get(ctx context.Context, id uuid.UUID) (*models.TreatmentSchedule, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.TreatmentSchedule, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
	// DeleteByFarmer removes every schedule for the farmer. Schedules carry no
	// land reference, so re-diagnosis and crop deletion clear them farmer-wide.
	DeleteByFarmer(ctx context.Context, farmerID uuid.UUID) error
}

// scheduleRepository implements ScheduleRepository using PostgreSQL.
type scheduleRepository struct {
	db *database.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *database.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

// CreateBatch inserts all schedules in one transaction.
func (r *scheduleRepository) CreateBatch(ctx context.Context, schedules []*models.TreatmentSchedule) error {
	if len(schedules) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	now := time.Now()
	query := `
		INSERT INTO treatment_schedules (id, farmer_id, pesticide_name, scheduled_date, completed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	batch := &pgx.Batch{}
	for _, s := range schedules {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
		batch.Queue(query, s.ID, s.FarmerID, s.PesticideName, s.ScheduledDate, s.Completed, s.CreatedAt, s.UpdatedAt)
	}

	results := tx.SendBatch(ctx, batch)
	for range schedules {
		if _, err = results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("failed to insert schedule: %w", err)
		}
	}
	if err = results.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get retrieves a schedule by ID.
func (r *scheduleRepository) Get(ctx context.Context, id uuid.UUID) (*models.TreatmentSchedule, error) {
	query := `
		SELECT id, farmer_id, pesticide_name, scheduled_date, completed, created_at, updated_at
		FROM treatment_schedules
		WHERE id = $1`

	var s models.TreatmentSchedule
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.FarmerID,
		&s.PesticideName,
		&s.ScheduledDate,
		&s.Completed,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	return &s, nil
}

// ListByFarmer retrieves all schedules for a farmer ordered by scheduled date.
func (r *scheduleRepository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]*models.TreatmentSchedule, error) {
	query := `
		SELECT id, farmer_id, pesticide_name, scheduled_date, completed, created_at, updated_at
		FROM treatment_schedules
		WHERE farmer_id = $1
		ORDER BY scheduled_date`

	rows, err := r.db.Query(ctx, query, farmerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.TreatmentSchedule
	for rows.Next() {
		var s models.TreatmentSchedule
		err := rows.Scan(
			&s.ID,
			&s.FarmerID,
			&s.PesticideName,
			&s.ScheduledDate,
			&s.Completed,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule: %w", err)
		}
		schedules = append(schedules, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedules: %w", err)
	}

	return schedules, nil
}

// SetCompleted updates the completed flag of a schedule.
func (r *scheduleRepository) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	query := `
		UPDATE treatment_schedules
		SET completed = $1, updated_at = $2
		WHERE id = $3`

	result, err := r.db.Exec(ctx, query, completed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeleteByFarmer removes every schedule for the farmer.
func (r *scheduleRepository) DeleteByFarmer(ctx context.Context, farmerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM treatment_schedules WHERE farmer_id = $1`, farmerID)
	if err != nil {
		return fmt.Errorf("failed to delete schedules: %w", err)
	}
	return nil
}

// Ensure scheduleRepository implements ScheduleRepository at compile time.
var _ ScheduleRepository = (*scheduleRepository)(nil)
