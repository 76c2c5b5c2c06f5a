package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlantDiagnosis is the persisted output of the remote image classifier for
// one uploaded image. It is farmer-scoped rather than plant-scoped; the crops
// view approximates the linkage by substring-matching the predicted class
// against plant names.
type PlantDiagnosis struct {
	ID             uuid.UUID `json:"id"`
	FarmerID       uuid.UUID `json:"farmer_id"`
	Status         string    `json:"status"`
	PredictedClass string    `json:"predicted_class"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`
}

// DisplayClass returns the predicted class with underscores replaced by
// spaces, e.g. "Corn_Common_Rust" -> "Corn Common Rust".
func (d *PlantDiagnosis) DisplayClass() string {
	return strings.ReplaceAll(d.PredictedClass, "_", " ")
}

// MatchesPlant reports whether this diagnosis plausibly refers to a plant
// with the given name, using the case-insensitive substring heuristic the
// schema forces on us.
func (d *PlantDiagnosis) MatchesPlant(plantName string) bool {
	if plantName == "" {
		return false
	}
	return strings.Contains(strings.ToLower(d.PredictedClass), strings.ToLower(plantName))
}
