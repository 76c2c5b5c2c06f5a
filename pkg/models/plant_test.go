package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCrop(t *testing.T) {
	assert.True(t, IsValidCrop(CropCorn))
	assert.True(t, IsValidCrop(CropRice))
	assert.True(t, IsValidCrop(CropWheat))
	assert.False(t, IsValidCrop("corn"), "crop names are case sensitive")
	assert.False(t, IsValidCrop("Tomato"))
	assert.False(t, IsValidCrop(""))
}

func TestApplyTreatmentReduction(t *testing.T) {
	assert.Equal(t, 65.0, ApplyTreatmentReduction(80))
	assert.Equal(t, 0.0, ApplyTreatmentReduction(15))
	assert.Equal(t, 0.0, ApplyTreatmentReduction(10), "reduction floors at zero")
	assert.Equal(t, 0.0, ApplyTreatmentReduction(0))
}
