package models

// Pesticide is one entry of the static reference catalogue.
type Pesticide struct {
	Name           string   `json:"name"`
	TargetCrops    []string `json:"target_crops"`
	TargetDiseases []string `json:"target_diseases"`
	Dosage         string   `json:"dosage"`
	SafetyNotes    string   `json:"safety_notes"`
}

// ForCrop reports whether the pesticide is recommended for the given crop.
func (p *Pesticide) ForCrop(crop string) bool {
	for _, c := range p.TargetCrops {
		if c == crop {
			return true
		}
	}
	return false
}
