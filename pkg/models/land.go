package models

import (
	"time"

	"github.com/google/uuid"
)

// Land is a farmer-owned parcel with acreage and a free-text location.
type Land struct {
	ID        uuid.UUID `json:"id"`
	FarmerID  uuid.UUID `json:"farmer_id"`
	Acres     float64   `json:"acres"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
