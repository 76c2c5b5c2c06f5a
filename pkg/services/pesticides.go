package services

import (
	"github.com/farmcare-io/farmcare-engine/pkg/models"
)

// pesticideCatalogue is the static reference list shown in the app. Dosages
// assume knapsack application per acre.
var pesticideCatalogue = []models.Pesticide{
	{
		Name:           "Mancozeb 75% WP",
		TargetCrops:    []string{models.CropCorn, models.CropWheat},
		TargetDiseases: []string{"Gray Leaf Spot", "Common Rust", "Leaf Blight"},
		Dosage:         "600-800 g per acre in 200 L water",
		SafetyNotes:    "Wear gloves and a mask during mixing. Do not harvest within 7 days of spraying.",
	},
	{
		Name:           "Propiconazole 25% EC",
		TargetCrops:    []string{models.CropWheat, models.CropRice},
		TargetDiseases: []string{"Brown Rust", "Yellow Rust", "Sheath Blight"},
		Dosage:         "200 ml per acre in 200 L water",
		SafetyNotes:    "Toxic to fish; keep away from ponds and waterways.",
	},
	{
		Name:           "Tricyclazole 75% WP",
		TargetCrops:    []string{models.CropRice},
		TargetDiseases: []string{"Leaf Blast", "Neck Blast"},
		Dosage:         "120 g per acre in 200 L water",
		SafetyNotes:    "Apply at first sign of lesions. Avoid spraying before rain.",
	},
	{
		Name:           "Azoxystrobin 23% SC",
		TargetCrops:    []string{models.CropCorn, models.CropRice, models.CropWheat},
		TargetDiseases: []string{"Gray Leaf Spot", "Sheath Blight", "Leaf Blight"},
		Dosage:         "200 ml per acre in 200 L water",
		SafetyNotes:    "Rotate with a different mode of action to avoid resistance.",
	},
	{
		Name:           "Copper Oxychloride 50% WP",
		TargetCrops:    []string{models.CropCorn, models.CropRice},
		TargetDiseases: []string{"Bacterial Leaf Blight", "Leaf Spot"},
		Dosage:         "500 g per acre in 200 L water",
		SafetyNotes:    "May cause leaf scorch on young plants; use the lower dose early in the season.",
	},
}

// PesticideService serves the static pesticide reference catalogue.
type PesticideService struct{}

// NewPesticideService creates a new pesticide service.
func NewPesticideService() *PesticideService {
	return &PesticideService{}
}

// List returns the catalogue, optionally filtered to one crop. An empty crop
// returns everything; an unknown crop returns an empty list.
func (s *PesticideService) List(crop string) []models.Pesticide {
	if crop == "" {
		result := make([]models.Pesticide, len(pesticideCatalogue))
		copy(result, pesticideCatalogue)
		return result
	}

	var result []models.Pesticide
	for _, p := range pesticideCatalogue {
		if p.ForCrop(crop) {
			result = append(result, p)
		}
	}
	return result
}
