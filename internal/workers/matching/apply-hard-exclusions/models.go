// internal/workers/matching/apply-hard-exclusions/models.go
package applyhardexclusions

import "fitmatch-workers/internal/models"

type Input struct {
	Trainers    []models.Trainer         `json:"trainers"`
	Preferences models.ClientPreferences `json:"clientPreferences"`
}

type Output struct {
	IncludedTrainers []models.Trainer         `json:"includedTrainers"`
	ExcludedTrainers []models.ExcludedTrainer `json:"excludedTrainers"`
	ExclusionSummary models.ExclusionSummary  `json:"exclusionSummary"`
}
