package models

import (
	"time"

	"github.com/google/uuid"
)

// Farmer represents the authenticated end user of the application.
// The ID is the subject UUID issued by the hosted auth provider; the row is
// created on first authenticated contact and never hard-deleted.
type Farmer struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
