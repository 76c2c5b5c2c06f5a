package models

// CropRecord is the crops-view projection: a plant joined with its land and,
// when the substring heuristic finds one, the most recent matching diagnosis.
type CropRecord struct {
	Plant     Plant           `json:"plant"`
	Land      Land            `json:"land"`
	Diagnosis *PlantDiagnosis `json:"diagnosis,omitempty"`
}
