package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/farmcare-io/farmcare-engine/pkg/apperrors"
)

// WizardStep identifies a stage of the crop-diagnosis wizard.
// State machine:
//
//	select_crop → upload_image → review_land → results
//
// Transitions are strictly linear; backward navigation is allowed from
// upload_image and review_land only. results is terminal.
type WizardStep string

const (
	WizardStepSelectCrop  WizardStep = "select_crop"
	WizardStepUploadImage WizardStep = "upload_image"
	WizardStepReviewLand  WizardStep = "review_land"
	WizardStepResults     WizardStep = "results"
)

// ValidWizardSteps contains all valid wizard step values.
var ValidWizardSteps = []WizardStep{
	WizardStepSelectCrop,
	WizardStepUploadImage,
	WizardStepReviewLand,
	WizardStepResults,
}

// IsValidWizardStep checks if the given step is valid.
func IsValidWizardStep(s WizardStep) bool {
	for _, v := range ValidWizardSteps {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the step is the terminal results step.
func (s WizardStep) IsTerminal() bool {
	return s == WizardStepResults
}

// CanGoBack returns true if backward navigation is allowed from this step.
func (s WizardStep) CanGoBack() bool {
	return s == WizardStepUploadImage || s == WizardStepReviewLand
}

// WizardEventType identifies a wizard state-machine event.
type WizardEventType string

const (
	// WizardEventSelectCrop records the farmer's crop choice.
	WizardEventSelectCrop WizardEventType = "select_crop"
	// WizardEventDiagnosisRecorded fires after a successful classification
	// has been persisted.
	WizardEventDiagnosisRecorded WizardEventType = "diagnosis_recorded"
	// WizardEventScheduleCommitted fires after the land/plant/schedule writes
	// have all succeeded.
	WizardEventScheduleCommitted WizardEventType = "schedule_committed"
	// WizardEventBack navigates one step backward.
	WizardEventBack WizardEventType = "back"
)

// WizardEvent is an input to the wizard state machine.
type WizardEvent struct {
	Type      WizardEventType
	Crop      string
	Diagnosis *PlantDiagnosis
}

// EditContext carries the existing land a re-diagnosis run targets. Its
// presence switches the land writer into update mode and pre-populates the
// review step.
type EditContext struct {
	LandID   uuid.UUID `json:"land_id"`
	Acres    float64   `json:"acres"`
	Location string    `json:"location"`
}

// WizardState is the full state of one wizard run. It is a value object;
// transitions go through ApplyWizardEvent and never mutate in place.
type WizardState struct {
	RunID     uuid.UUID       `json:"run_id"`
	FarmerID  uuid.UUID       `json:"farmer_id"`
	Step      WizardStep      `json:"step"`
	Crop      string          `json:"crop,omitempty"`
	Diagnosis *PlantDiagnosis `json:"diagnosis,omitempty"`
	Edit      *EditContext    `json:"edit,omitempty"`
	StartedAt time.Time       `json:"started_at"`
}

// NewWizardState creates the initial state for a wizard run. A non-nil edit
// context marks the run as a re-diagnosis of an existing land.
func NewWizardState(runID, farmerID uuid.UUID, edit *EditContext) WizardState {
	return WizardState{
		RunID:     runID,
		FarmerID:  farmerID,
		Step:      WizardStepSelectCrop,
		Edit:      edit,
		StartedAt: time.Now(),
	}
}

// IsEditMode returns true if this run re-diagnoses an existing land.
func (s WizardState) IsEditMode() bool {
	return s.Edit != nil
}

// ApplyWizardEvent is the pure transition function of the wizard state
// machine: given a state and an event it returns the next state, or
// apperrors.ErrInvalidTransition when the event is not legal at the current
// step. The input state is never modified.
func ApplyWizardEvent(state WizardState, event WizardEvent) (WizardState, error) {
	switch event.Type {
	case WizardEventSelectCrop:
		if state.Step != WizardStepSelectCrop {
			return state, transitionError(state.Step, event.Type)
		}
		if !IsValidCrop(event.Crop) {
			return state, fmt.Errorf("%w: %q", apperrors.ErrInvalidCrop, event.Crop)
		}
		next := state
		next.Crop = event.Crop
		next.Step = WizardStepUploadImage
		return next, nil

	case WizardEventDiagnosisRecorded:
		if state.Step != WizardStepUploadImage {
			return state, transitionError(state.Step, event.Type)
		}
		if event.Diagnosis == nil {
			return state, fmt.Errorf("%w: diagnosis event without diagnosis", apperrors.ErrInvalidTransition)
		}
		next := state
		next.Diagnosis = event.Diagnosis
		next.Step = WizardStepReviewLand
		return next, nil

	case WizardEventScheduleCommitted:
		if state.Step != WizardStepReviewLand {
			return state, transitionError(state.Step, event.Type)
		}
		next := state
		next.Step = WizardStepResults
		return next, nil

	case WizardEventBack:
		if !state.Step.CanGoBack() {
			return state, transitionError(state.Step, event.Type)
		}
		next := state
		if state.Step == WizardStepUploadImage {
			next.Step = WizardStepSelectCrop
		} else {
			next.Step = WizardStepUploadImage
		}
		return next, nil

	default:
		return state, fmt.Errorf("%w: unknown event %q", apperrors.ErrInvalidTransition, event.Type)
	}
}

func transitionError(step WizardStep, event WizardEventType) error {
	return fmt.Errorf("%w: event %q not allowed at step %q", apperrors.ErrInvalidTransition, event, step)
}
