package models

import (
	"time"

	"github.com/google/uuid"
)

// Plant is a crop instance grown on a Land, with an associated disease severity.
type Plant struct {
	ID                  uuid.UUID `json:"id"`
	LandID              uuid.UUID `json:"land_id"`
	PlantName           string    `json:"plant_name"`
	DiseasePercentage   float64   `json:"disease_percentage"`
	PreviousFertilizers string    `json:"previous_fertilizers"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Crop name constants for the supported crop types.
const (
	CropCorn  = "Corn"
	CropRice  = "Rice"
	CropWheat = "Wheat"
)

// ValidCrops contains all supported crop names.
var ValidCrops = []string{CropCorn, CropRice, CropWheat}

// IsValidCrop checks if the given crop name is supported.
func IsValidCrop(name string) bool {
	for _, c := range ValidCrops {
		if c == name {
			return true
		}
	}
	return false
}

// TreatmentDiseaseReduction is the number of percentage points removed from
// every plant owned by a farmer when one of their treatments is completed.
// The reduction is farmer-wide because schedules carry no plant reference.
const TreatmentDiseaseReduction = 15.0

// ApplyTreatmentReduction returns the disease percentage after one completed
// treatment, floored at zero.
func ApplyTreatmentReduction(diseasePercentage float64) float64 {
	reduced := diseasePercentage - TreatmentDiseaseReduction
	if reduced < 0 {
		return 0
	}
	return reduced
}
