package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayClass(t *testing.T) {
	d := &PlantDiagnosis{PredictedClass: "Corn_Gray_Leaf_Spot"}
	assert.Equal(t, "Corn Gray Leaf Spot", d.DisplayClass())

	d = &PlantDiagnosis{PredictedClass: "Healthy"}
	assert.Equal(t, "Healthy", d.DisplayClass())
}

func TestMatchesPlant(t *testing.T) {
	d := &PlantDiagnosis{PredictedClass: "Corn_Common_Rust"}

	assert.True(t, d.MatchesPlant("Corn"))
	assert.True(t, d.MatchesPlant("corn"), "matching is case insensitive")
	assert.False(t, d.MatchesPlant("Rice"))
	assert.False(t, d.MatchesPlant(""), "empty plant name never matches")
}
