package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/inference"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// wizardFixture bundles a WizardService with all its mocks.
type wizardFixture struct {
	svc         *WizardService
	classifier  *mockClassifier
	recommender *mockRecommender
	email       *mockEmailSender
	farmers     *mockFarmerRepo
	lands       *mockLandRepo
	plants      *mockPlantRepo
	diagnoses   *mockDiagnosisRepo
	schedules   *mockScheduleRepo
	farmerID    uuid.UUID
}

func newWizardFixture() *wizardFixture {
	f := &wizardFixture{
		classifier: &mockClassifier{
			result: &inference.Diagnosis{Status: "success", PredictedClass: "Corn_Common_Rust", Confidence: 0.93},
		},
		recommender: &mockRecommender{
			result: &inference.Recommendation{
				Status:     "success",
				Pesticides: []string{"Mancozeb 75% WP"},
				Schedules: []inference.ScheduleEntry{
					{PesticideName: "Mancozeb 75% WP", ScheduledDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)},
					{PesticideName: "Mancozeb 75% WP", ScheduledDate: time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)},
				},
			},
		},
		email:     &mockEmailSender{},
		farmers:   newMockFarmerRepo(),
		lands:     newMockLandRepo(),
		diagnoses: &mockDiagnosisRepo{},
		schedules: newMockScheduleRepo(),
		farmerID:  uuid.New(),
	}
	f.plants = newMockPlantRepo(f.lands)

	f.farmers.farmers[f.farmerID] = &models.Farmer{
		ID:    f.farmerID,
		Name:  "Amina",
		Email: "amina@example.com",
	}

	diagnosisService := NewDiagnosisService(f.classifier, f.diagnoses, testMaxImageBytes, zap.NewNop())
	f.svc = NewWizardService(
		diagnosisService,
		f.farmers,
		f.lands,
		f.plants,
		f.schedules,
		f.recommender,
		f.email,
		zap.NewNop(),
	)
	return f
}

// advanceToReview walks a fresh run to the review step.
func (f *wizardFixture) advanceToReview(t *testing.T, edit *models.EditContext) models.WizardState {
	t.Helper()
	ctx := context.Background()

	state, err := f.svc.StartRun(ctx, f.farmerID, edit)
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	state, err = f.svc.SelectCrop(ctx, f.farmerID, state.RunID, models.CropCorn)
	if err != nil {
		t.Fatalf("SelectCrop failed: %v", err)
	}
	state, err = f.svc.Analyze(ctx, f.farmerID, state.RunID, validUpload())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	return state
}

func TestWizard_FullRunCreateMode(t *testing.T) {
	f := newWizardFixture()
	state := f.advanceToReview(t, nil)

	outcome, err := f.svc.SubmitLand(context.Background(), f.farmerID, state.RunID, &LandSubmission{
		Acres:               2.5,
		Location:            "Nakuru",
		PreviousFertilizers: "DAP",
	})
	if err != nil {
		t.Fatalf("SubmitLand failed: %v", err)
	}

	if outcome.State.Step != models.WizardStepResults {
		t.Errorf("run ended at step %q", outcome.State.Step)
	}
	if len(f.lands.lands) != 1 {
		t.Fatalf("expected 1 land, got %d", len(f.lands.lands))
	}
	if len(f.plants.plants) != 1 {
		t.Fatalf("expected 1 plant, got %d", len(f.plants.plants))
	}
	for _, plant := range f.plants.plants {
		if plant.PlantName != models.CropCorn {
			t.Errorf("plant name = %q", plant.PlantName)
		}
		if plant.DiseasePercentage != 93.0 {
			t.Errorf("disease percentage = %v, want 93 (confidence * 100)", plant.DiseasePercentage)
		}
	}
	if len(f.schedules.schedules) != 2 {
		t.Errorf("expected 2 schedules, got %d", len(f.schedules.schedules))
	}

	req := f.recommender.gotRequest
	if req == nil {
		t.Fatal("recommender never called")
	}
	if req.PlantName != models.CropCorn || req.PredictedClass != "Corn_Common_Rust" {
		t.Errorf("recommendation request = %+v", req)
	}
	if req.DiseasePercentage != 93.0 {
		t.Errorf("recommendation disease percentage = %v", req.DiseasePercentage)
	}

	if !outcome.EmailSent {
		t.Error("expected email to be sent")
	}
	if len(f.email.sent) != 1 || f.email.sent[0].To != "amina@example.com" {
		t.Errorf("email sent = %+v", f.email.sent)
	}
}

func TestWizard_EditModeReplacesPlantsAndSchedules(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()

	// Existing land with a plant and schedules from an earlier run.
	land := &models.Land{FarmerID: f.farmerID, Acres: 1, Location: "Old"}
	if err := f.lands.Create(ctx, land); err != nil {
		t.Fatal(err)
	}
	oldPlant := &models.Plant{LandID: land.ID, PlantName: models.CropRice, DiseasePercentage: 40}
	if err := f.plants.Create(ctx, oldPlant); err != nil {
		t.Fatal(err)
	}
	if err := f.schedules.CreateBatch(ctx, []*models.TreatmentSchedule{
		{FarmerID: f.farmerID, PesticideName: "Old", ScheduledDate: time.Now()},
	}); err != nil {
		t.Fatal(err)
	}

	state := f.advanceToReview(t, &models.EditContext{LandID: land.ID})
	outcome, err := f.svc.SubmitLand(ctx, f.farmerID, state.RunID, &LandSubmission{
		Acres:    4,
		Location: "New",
	})
	if err != nil {
		t.Fatalf("SubmitLand failed: %v", err)
	}

	if len(f.lands.lands) != 1 {
		t.Fatalf("edit mode must not create a second land, got %d", len(f.lands.lands))
	}
	updated := f.lands.lands[land.ID]
	if updated.Acres != 4 || updated.Location != "New" {
		t.Errorf("land not updated in place: %+v", updated)
	}
	if _, ok := f.plants.plants[oldPlant.ID]; ok {
		t.Error("old plant should be replaced in edit mode")
	}
	if len(f.plants.plants) != 1 {
		t.Errorf("expected 1 plant after edit, got %d", len(f.plants.plants))
	}
	for _, s := range f.schedules.schedules {
		if s.PesticideName == "Old" {
			t.Error("old schedules should be cleared in edit mode")
		}
	}
	if outcome.Land.ID != land.ID {
		t.Errorf("outcome land = %s, want %s", outcome.Land.ID, land.ID)
	}
}

func TestWizard_StartRunRejectsForeignLandEdit(t *testing.T) {
	f := newWizardFixture()
	ctx := context.Background()

	other := &models.Land{FarmerID: uuid.New(), Acres: 1, Location: "Elsewhere"}
	if err := f.lands.Create(ctx, other); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.StartRun(ctx, f.farmerID, &models.EditContext{LandID: other.ID})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign land, got %v", err)
	}
}

func TestWizard_ScheduleFailureBlocksAdvance(t *testing.T) {
	f := newWizardFixture()
	f.schedules.createBatchErr = errors.New("db down")
	state := f.advanceToReview(t, nil)

	_, err := f.svc.SubmitLand(context.Background(), f.farmerID, state.RunID, &LandSubmission{
		Acres:    2,
		Location: "Nakuru",
	})
	if err == nil {
		t.Fatal("expected error when schedule persistence fails")
	}

	// The run must stay at review; the land/plant writes are not rolled back.
	current, err := f.svc.GetRun(f.farmerID, state.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if current.Step != models.WizardStepReviewLand {
		t.Errorf("run advanced to %q despite schedule failure", current.Step)
	}
	if len(f.lands.lands) != 1 {
		t.Errorf("land write should remain, got %d lands", len(f.lands.lands))
	}
	if len(f.email.sent) != 0 {
		t.Error("no email should go out when the run does not complete")
	}
}

func TestWizard_RecommendationFailureBlocksAdvance(t *testing.T) {
	f := newWizardFixture()
	f.recommender.err = errors.New("recommender down")
	state := f.advanceToReview(t, nil)

	_, err := f.svc.SubmitLand(context.Background(), f.farmerID, state.RunID, &LandSubmission{
		Acres:    2,
		Location: "Nakuru",
	})
	if err == nil {
		t.Fatal("expected error when recommendation fails")
	}

	current, _ := f.svc.GetRun(f.farmerID, state.RunID)
	if current.Step != models.WizardStepReviewLand {
		t.Errorf("run advanced to %q despite recommendation failure", current.Step)
	}
	if len(f.schedules.schedules) != 0 {
		t.Errorf("no schedules expected, got %d", len(f.schedules.schedules))
	}
}

func TestWizard_EmailFailureDoesNotFailRun(t *testing.T) {
	f := newWizardFixture()
	f.email.err = errors.New("smtp relay down")
	state := f.advanceToReview(t, nil)

	outcome, err := f.svc.SubmitLand(context.Background(), f.farmerID, state.RunID, &LandSubmission{
		Acres:    2,
		Location: "Nakuru",
	})
	if err != nil {
		t.Fatalf("SubmitLand failed: %v", err)
	}
	if outcome.State.Step != models.WizardStepResults {
		t.Errorf("run ended at %q", outcome.State.Step)
	}
	if outcome.EmailSent {
		t.Error("EmailSent should be false when delivery fails")
	}
}

func TestWizard_SubmitLandValidation(t *testing.T) {
	f := newWizardFixture()
	state := f.advanceToReview(t, nil)

	tests := []struct {
		name       string
		submission LandSubmission
	}{
		{"zero acres", LandSubmission{Acres: 0, Location: "Nakuru"}},
		{"negative acres", LandSubmission{Acres: -1, Location: "Nakuru"}},
		{"missing location", LandSubmission{Acres: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitLand(context.Background(), f.farmerID, state.RunID, &tt.submission)
			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if f.recommender.calls != 0 {
		t.Errorf("recommender called %d times for invalid submissions", f.recommender.calls)
	}
	if len(f.lands.lands) != 0 {
		t.Errorf("no land should be written for invalid submissions, got %d", len(f.lands.lands))
	}
}

func TestWizard_AnalyzeFailureKeepsUploadStep(t *testing.T) {
	f := newWizardFixture()
	f.classifier.err = errors.New("model cold start")
	ctx := context.Background()

	state, err := f.svc.StartRun(ctx, f.farmerID, nil)
	if err != nil {
		t.Fatal(err)
	}
	state, err = f.svc.SelectCrop(ctx, f.farmerID, state.RunID, models.CropWheat)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Analyze(ctx, f.farmerID, state.RunID, validUpload()); err == nil {
		t.Fatal("expected analyze error")
	}

	current, _ := f.svc.GetRun(f.farmerID, state.RunID)
	if current.Step != models.WizardStepUploadImage {
		t.Errorf("run should stay at upload for a retry, got %q", current.Step)
	}
	if len(f.diagnoses.diagnoses) != 0 {
		t.Errorf("no diagnosis should persist on classifier failure, got %d", len(f.diagnoses.diagnoses))
	}
}

func TestWizard_RunsAreFarmerScoped(t *testing.T) {
	f := newWizardFixture()
	state, err := f.svc.StartRun(context.Background(), f.farmerID, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = f.svc.GetRun(uuid.New(), state.RunID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("foreign farmer should see not-found, got %v", err)
	}

	_, err = f.svc.SelectCrop(context.Background(), uuid.New(), state.RunID, models.CropCorn)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("foreign farmer should not advance the run, got %v", err)
	}
}

func TestWizard_BackNavigation(t *testing.T) {
	f := newWizardFixture()
	state := f.advanceToReview(t, nil)
	ctx := context.Background()

	state, err := f.svc.Back(ctx, f.farmerID, state.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != models.WizardStepUploadImage {
		t.Errorf("back from review landed at %q", state.Step)
	}

	state, err = f.svc.Back(ctx, f.farmerID, state.RunID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Step != models.WizardStepSelectCrop {
		t.Errorf("back from upload landed at %q", state.Step)
	}

	if _, err := f.svc.Back(ctx, f.farmerID, state.RunID); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("back at the first step should fail, got %v", err)
	}
}
