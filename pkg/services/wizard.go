package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/logging"
	"github.com/farmcare-io/farmcare-engine/pkg/mailer"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
	"github.com/farmcare-io/farmcare-engine/pkg/repositories"
)

// LandSubmission is the review-step form input.
type LandSubmission struct {
	Acres               float64 `json:"acres"`
	Location            string  `json:"location"`
	PreviousFertilizers string  `json:"previous_fertilizers"`
}

// Validate checks the form input before any write happens.
func (s *LandSubmission) Validate() error {
	if s.Acres <= 0 {
		return fmt.Errorf("%w: acres must be positive", apperrors.ErrValidation)
	}
	if s.Location == "" {
		return fmt.Errorf("%w: location is required", apperrors.ErrValidation)
	}
	return nil
}

// WizardOutcome is the result of a completed wizard run.
type WizardOutcome struct {
	State      models.WizardState          `json:"state"`
	Land       *models.Land                `json:"land"`
	Plant      *models.Plant               `json:"plant"`
	Pesticides []string                    `json:"pesticides"`
	Schedules  []*models.TreatmentSchedule `json:"schedules"`
	EmailSent  bool                        `json:"email_sent"`
}

// WizardService drives the four-step diagnosis wizard. Run state lives in
// memory only; a restart drops in-flight runs but nothing already persisted.
type WizardService struct {
	mu   sync.RWMutex
	runs map[uuid.UUID]models.WizardState

	diagnosis   *DiagnosisService
	farmers     repositories.FarmerRepository
	lands       repositories.LandRepository
	plants      repositories.PlantRepository
	schedules   repositories.ScheduleRepository
	recommender Recommender
	email       EmailSender
	logger      *zap.Logger
}

// NewWizardService creates a new wizard service.
func NewWizardService(
	diagnosis *DiagnosisService,
	farmers repositories.FarmerRepository,
	lands repositories.LandRepository,
	plants repositories.PlantRepository,
	schedules repositories.ScheduleRepository,
	recommender Recommender,
	email EmailSender,
	logger *zap.Logger,
) *WizardService {
	return &WizardService{
		runs:        make(map[uuid.UUID]models.WizardState),
		diagnosis:   diagnosis,
		farmers:     farmers,
		lands:       lands,
		plants:      plants,
		schedules:   schedules,
		recommender: recommender,
		email:       email,
		logger:      logger.Named("wizard_service"),
	}
}

// StartRun begins a new wizard run for the farmer. A non-nil edit context
// makes it a re-diagnosis of an existing land; ownership is checked up front.
func (s *WizardService) StartRun(ctx context.Context, farmerID uuid.UUID, edit *models.EditContext) (models.WizardState, error) {
	if edit != nil {
		land, err := s.lands.Get(ctx, edit.LandID)
		if err != nil {
			return models.WizardState{}, fmt.Errorf("failed to load land for edit: %w", err)
		}
		if land.FarmerID != farmerID {
			return models.WizardState{}, apperrors.ErrNotFound
		}
		edit.Acres = land.Acres
		edit.Location = land.Location
	}

	state := models.NewWizardState(uuid.New(), farmerID, edit)

	s.mu.Lock()
	s.runs[state.RunID] = state
	s.mu.Unlock()

	s.logger.Info("Wizard run started",
		zap.String("run_id", state.RunID.String()),
		zap.String("farmer_id", farmerID.String()),
		zap.Bool("edit_mode", state.IsEditMode()))

	return state, nil
}

// GetRun returns the current state of a run owned by the farmer.
func (s *WizardService) GetRun(farmerID, runID uuid.UUID) (models.WizardState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(farmerID, runID)
}

// lookupLocked fetches a run while holding at least a read lock. Runs owned
// by other farmers report not-found rather than forbidden.
func (s *WizardService) lookupLocked(farmerID, runID uuid.UUID) (models.WizardState, error) {
	state, ok := s.runs[runID]
	if !ok || state.FarmerID != farmerID {
		return models.WizardState{}, fmt.Errorf("%w: wizard run %s", apperrors.ErrNotFound, runID)
	}
	return state, nil
}

// apply runs the pure transition and stores the result, guarding against a
// concurrent request having advanced the run in the meantime.
func (s *WizardService) apply(farmerID, runID uuid.UUID, expected models.WizardStep, event models.WizardEvent) (models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookupLocked(farmerID, runID)
	if err != nil {
		return models.WizardState{}, err
	}
	if state.Step != expected {
		return models.WizardState{}, fmt.Errorf("%w: run advanced concurrently", apperrors.ErrConflict)
	}

	next, err := models.ApplyWizardEvent(state, event)
	if err != nil {
		return models.WizardState{}, err
	}

	s.runs[runID] = next
	return next, nil
}

// SelectCrop records the farmer's crop choice and advances to the upload step.
func (s *WizardService) SelectCrop(ctx context.Context, farmerID, runID uuid.UUID, crop string) (models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookupLocked(farmerID, runID)
	if err != nil {
		return models.WizardState{}, err
	}

	next, err := models.ApplyWizardEvent(state, models.WizardEvent{
		Type: models.WizardEventSelectCrop,
		Crop: crop,
	})
	if err != nil {
		return models.WizardState{}, err
	}

	s.runs[runID] = next
	return next, nil
}

// Analyze classifies the uploaded image and, on success, attaches the
// persisted diagnosis to the run and advances to the review step. On any
// failure the run stays at the upload step for a retry with a new image.
func (s *WizardService) Analyze(ctx context.Context, farmerID, runID uuid.UUID, upload *ImageUpload) (models.WizardState, error) {
	state, err := s.GetRun(farmerID, runID)
	if err != nil {
		return models.WizardState{}, err
	}
	if state.Step != models.WizardStepUploadImage {
		return models.WizardState{}, fmt.Errorf("%w: image analysis not allowed at step %q", apperrors.ErrInvalidTransition, state.Step)
	}

	diagnosis, err := s.diagnosis.Diagnose(ctx, farmerID, upload)
	if err != nil {
		return models.WizardState{}, err
	}

	return s.apply(farmerID, runID, models.WizardStepUploadImage, models.WizardEvent{
		Type:      models.WizardEventDiagnosisRecorded,
		Diagnosis: diagnosis,
	})
}

// SubmitLand commits the land, plant, and treatment schedules, then advances
// to the results step. Schedule persistence is all-or-nothing and a failure
// there keeps the run at the review step; the land and plant writes are not
// rolled back in that case. Email delivery is best effort.
func (s *WizardService) SubmitLand(ctx context.Context, farmerID, runID uuid.UUID, submission *LandSubmission) (*WizardOutcome, error) {
	state, err := s.GetRun(farmerID, runID)
	if err != nil {
		return nil, err
	}
	if state.Step != models.WizardStepReviewLand {
		return nil, fmt.Errorf("%w: land submission not allowed at step %q", apperrors.ErrInvalidTransition, state.Step)
	}
	if state.Diagnosis == nil {
		return nil, apperrors.ErrDiagnosisRequired
	}
	if err := submission.Validate(); err != nil {
		return nil, err
	}

	land, plant, err := s.writeLandAndPlant(ctx, state, submission)
	if err != nil {
		return nil, err
	}

	recommendation, err := s.recommender.Recommend(ctx, &inference.RecommendationRequest{
		PlantName:           state.Crop,
		DiseasePercentage:   plant.DiseasePercentage,
		PreviousFertilizers: submission.PreviousFertilizers,
		Acres:               submission.Acres,
		Location:            submission.Location,
		PredictedClass:      state.Diagnosis.PredictedClass,
	})
	if err != nil {
		return nil, fmt.Errorf("recommendation failed: %w", err)
	}

	schedules := make([]*models.TreatmentSchedule, 0, len(recommendation.Schedules))
	for _, entry := range recommendation.Schedules {
		schedules = append(schedules, &models.TreatmentSchedule{
			FarmerID:      farmerID,
			PesticideName: entry.PesticideName,
			ScheduledDate: entry.ScheduledDate,
			Completed:     entry.Completed,
		})
	}
	if err := s.schedules.CreateBatch(ctx, schedules); err != nil {
		return nil, fmt.Errorf("failed to persist schedules: %w", err)
	}

	next, err := s.apply(farmerID, runID, models.WizardStepReviewLand, models.WizardEvent{
		Type: models.WizardEventScheduleCommitted,
	})
	if err != nil {
		return nil, err
	}

	emailSent := s.sendReport(ctx, next, land, recommendation)

	s.logger.Info("Wizard run completed",
		zap.String("run_id", runID.String()),
		zap.String("farmer_id", farmerID.String()),
		zap.Int("schedules", len(schedules)),
		zap.Bool("email_sent", emailSent))

	return &WizardOutcome{
		State:      next,
		Land:       land,
		Plant:      plant,
		Pesticides: recommendation.Pesticides,
		Schedules:  schedules,
		EmailSent:  emailSent,
	}, nil
}

// writeLandAndPlant performs the create-or-edit land write and the plant
// insert. In edit mode existing plants under the land and every schedule of
// the farmer are replaced.
func (s *WizardService) writeLandAndPlant(ctx context.Context, state models.WizardState, submission *LandSubmission) (*models.Land, *models.Plant, error) {
	var land *models.Land

	if state.IsEditMode() {
		if err := s.lands.Update(ctx, state.Edit.LandID, submission.Acres, submission.Location); err != nil {
			return nil, nil, fmt.Errorf("failed to update land: %w", err)
		}
		if err := s.plants.DeleteByLand(ctx, state.Edit.LandID); err != nil {
			return nil, nil, err
		}
		if err := s.schedules.DeleteByFarmer(ctx, state.FarmerID); err != nil {
			return nil, nil, err
		}
		land = &models.Land{
			ID:       state.Edit.LandID,
			FarmerID: state.FarmerID,
			Acres:    submission.Acres,
			Location: submission.Location,
		}
	} else {
		land = &models.Land{
			FarmerID: state.FarmerID,
			Acres:    submission.Acres,
			Location: submission.Location,
		}
		if err := s.lands.Create(ctx, land); err != nil {
			return nil, nil, err
		}
	}

	plant := &models.Plant{
		LandID:              land.ID,
		PlantName:           state.Crop,
		DiseasePercentage:   state.Diagnosis.Confidence * 100,
		PreviousFertilizers: submission.PreviousFertilizers,
	}
	if err := s.plants.Create(ctx, plant); err != nil {
		return nil, nil, err
	}

	return land, plant, nil
}

// sendReport emails the treatment summary. Failures are logged and swallowed;
// the wizard result does not depend on email delivery.
func (s *WizardService) sendReport(ctx context.Context, state models.WizardState, land *models.Land, recommendation *inference.Recommendation) bool {
	farmer, err := s.farmers.Get(ctx, state.FarmerID)
	if err != nil {
		s.logger.Warn("Skipping report email: farmer lookup failed",
			zap.String("farmer_id", state.FarmerID.String()),
			zap.Error(err))
		return false
	}
	if farmer.Email == "" {
		s.logger.Warn("Skipping report email: farmer has no email address",
			zap.String("farmer_id", state.FarmerID.String()))
		return false
	}

	input := &mailer.ReportInput{
		FarmerName:     farmer.Name,
		Crop:           state.Crop,
		PredictedClass: state.Diagnosis.PredictedClass,
		Severity:       state.Diagnosis.Confidence * 100,
		Location:       land.Location,
		Acres:          land.Acres,
		Pesticides:     recommendation.Pesticides,
		Schedules:      recommendation.Schedules,
		GeneratedAt:    state.StartedAt,
	}

	err = s.email.Send(ctx, &mailer.EmailRequest{
		To:      farmer.Email,
		Subject: mailer.Subject(input),
		Body:    mailer.BuildReport(input),
	})
	if err != nil {
		s.logger.Warn("Report email failed",
			zap.String("farmer_id", state.FarmerID.String()),
			zap.String("to", logging.SanitizeEmail(farmer.Email)),
			zap.Error(err))
		return false
	}

	return true
}

// Back navigates the run one step backward. Recorded diagnoses stay in the
// database; only the in-memory run position moves.
func (s *WizardService) Back(ctx context.Context, farmerID, runID uuid.UUID) (models.WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.lookupLocked(farmerID, runID)
	if err != nil {
		return models.WizardState{}, err
	}

	next, err := models.ApplyWizardEvent(state, models.WizardEvent{Type: models.WizardEventBack})
	if err != nil {
		return models.WizardState{}, err
	}

	s.runs[runID] = next
	return next, nil
}
