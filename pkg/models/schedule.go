package models

import (
	"time"

	"github.com/google/uuid"
)

// TreatmentSchedule is a dated pesticide-application task generated from a
// recommendation response. Farmer-scoped; carries no plant or land reference.
type TreatmentSchedule struct {
	ID            uuid.UUID `json:"id"`
	FarmerID      uuid.UUID `json:"farmer_id"`
	PesticideName string    `json:"pesticide_name"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Schedule status values derived from the completed flag and the scheduled date.
const (
	ScheduleStatusCompleted = "completed"
	ScheduleStatusOverdue   = "overdue"
	ScheduleStatusPending   = "pending"
)

// StatusAt derives the display status of the schedule at the given time.
func (s *TreatmentSchedule) StatusAt(now time.Time) string {
	if s.Completed {
		return ScheduleStatusCompleted
	}
	if s.ScheduledDate.Before(now) {
		return ScheduleStatusOverdue
	}
	return ScheduleStatusPending
}
