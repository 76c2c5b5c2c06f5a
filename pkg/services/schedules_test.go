package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

type scheduleFixture struct {
	svc       *ScheduleService
	schedules *mockScheduleRepo
	plants    *mockPlantRepo
	lands     *mockLandRepo
	farmerID  uuid.UUID
	now       time.Time
}

func newScheduleFixture() *scheduleFixture {
	f := &scheduleFixture{
		schedules: newMockScheduleRepo(),
		lands:     newMockLandRepo(),
		farmerID:  uuid.New(),
		now:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	f.plants = newMockPlantRepo(f.lands)
	f.svc = NewScheduleService(f.schedules, f.plants, zap.NewNop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *scheduleFixture) addSchedule(t *testing.T, date time.Time, completed bool) uuid.UUID {
	t.Helper()
	s := &models.TreatmentSchedule{
		FarmerID:      f.farmerID,
		PesticideName: "Mancozeb 75% WP",
		ScheduledDate: date,
		Completed:     completed,
	}
	if err := f.schedules.CreateBatch(context.Background(), []*models.TreatmentSchedule{s}); err != nil {
		t.Fatal(err)
	}
	return s.ID
}

func (f *scheduleFixture) addPlant(t *testing.T, diseasePct float64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	land := &models.Land{FarmerID: f.farmerID, Acres: 2, Location: "Nakuru"}
	if err := f.lands.Create(ctx, land); err != nil {
		t.Fatal(err)
	}
	plant := &models.Plant{LandID: land.ID, PlantName: models.CropCorn, DiseasePercentage: diseasePct}
	if err := f.plants.Create(ctx, plant); err != nil {
		t.Fatal(err)
	}
	return plant.ID
}

func TestScheduleList_DerivesStatus(t *testing.T) {
	f := newScheduleFixture()
	f.addSchedule(t, f.now.AddDate(0, 0, -2), false) // overdue
	f.addSchedule(t, f.now.AddDate(0, 0, 2), false)  // pending
	f.addSchedule(t, f.now.AddDate(0, 0, -5), true)  // completed

	views, summary, err := f.svc.List(context.Background(), f.farmerID)
	if err != nil {
		t.Fatal(err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}

	counts := map[string]int{}
	for _, v := range views {
		counts[v.Status]++
	}
	if counts[models.ScheduleStatusOverdue] != 1 || counts[models.ScheduleStatusPending] != 1 || counts[models.ScheduleStatusCompleted] != 1 {
		t.Errorf("status counts = %v", counts)
	}
	if summary.Total != 3 || summary.Pending != 1 || summary.Overdue != 1 || summary.Completed != 1 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSetCompleted_ReducesDiseaseOnce(t *testing.T) {
	f := newScheduleFixture()
	plantID := f.addPlant(t, 80)
	scheduleID := f.addSchedule(t, f.now.AddDate(0, 0, 1), false)

	view, err := f.svc.SetCompleted(context.Background(), f.farmerID, scheduleID, true)
	if err != nil {
		t.Fatal(err)
	}
	if view.Status != models.ScheduleStatusCompleted {
		t.Errorf("view status = %q", view.Status)
	}

	plant, _ := f.plants.Get(context.Background(), plantID)
	if plant.DiseasePercentage != 65 {
		t.Errorf("disease = %v, want 65 after one completion", plant.DiseasePercentage)
	}
	if len(f.plants.reductions) != 1 {
		t.Fatalf("expected exactly one reduction, got %d", len(f.plants.reductions))
	}
	if f.plants.reductions[0] != models.TreatmentDiseaseReduction {
		t.Errorf("reduction = %v", f.plants.reductions[0])
	}
}

func TestSetCompleted_AlreadyCompletedDoesNotReduceAgain(t *testing.T) {
	f := newScheduleFixture()
	f.addPlant(t, 80)
	scheduleID := f.addSchedule(t, f.now, true)

	if _, err := f.svc.SetCompleted(context.Background(), f.farmerID, scheduleID, true); err != nil {
		t.Fatal(err)
	}
	if len(f.plants.reductions) != 0 {
		t.Errorf("re-completing must not reduce again, got %d reductions", len(f.plants.reductions))
	}
}

func TestSetCompleted_UncompleteDoesNotRestore(t *testing.T) {
	f := newScheduleFixture()
	plantID := f.addPlant(t, 80)
	scheduleID := f.addSchedule(t, f.now, true)

	if _, err := f.svc.SetCompleted(context.Background(), f.farmerID, scheduleID, false); err != nil {
		t.Fatal(err)
	}

	plant, _ := f.plants.Get(context.Background(), plantID)
	if plant.DiseasePercentage != 80 {
		t.Errorf("un-completing must not change disease, got %v", plant.DiseasePercentage)
	}

	// Completing again after un-completing reduces again; the toggle has no
	// memory beyond the current flag.
	if _, err := f.svc.SetCompleted(context.Background(), f.farmerID, scheduleID, true); err != nil {
		t.Fatal(err)
	}
	plant, _ = f.plants.Get(context.Background(), plantID)
	if plant.DiseasePercentage != 65 {
		t.Errorf("disease = %v after re-complete, want 65", plant.DiseasePercentage)
	}
}

func TestSetCompleted_FloorsAtZero(t *testing.T) {
	f := newScheduleFixture()
	plantID := f.addPlant(t, 10)
	scheduleID := f.addSchedule(t, f.now, false)

	if _, err := f.svc.SetCompleted(context.Background(), f.farmerID, scheduleID, true); err != nil {
		t.Fatal(err)
	}

	plant, _ := f.plants.Get(context.Background(), plantID)
	if plant.DiseasePercentage != 0 {
		t.Errorf("disease = %v, want 0 (floored)", plant.DiseasePercentage)
	}
}

func TestSetCompleted_ForeignScheduleIsNotFound(t *testing.T) {
	f := newScheduleFixture()
	scheduleID := f.addSchedule(t, f.now, false)

	_, err := f.svc.SetCompleted(context.Background(), uuid.New(), scheduleID, true)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
