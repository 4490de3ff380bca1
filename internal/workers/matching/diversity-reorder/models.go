// internal/workers/matching/diversity-reorder/models.go
package diversityreorder

import "fitmatch-workers/internal/models"

type Input struct {
	ScoredTrainers []models.ScoredTrainer `json:"scoredTrainers"`
	RandomSeed     *int64                 `json:"randomSeed,omitempty"`
}

type Output struct {
	ReorderedTrainers []models.ScoredTrainer `json:"reorderedTrainers"`
}
