// internal/workers/matching/compute-matches/models.go
package computematches

import "fitmatch-workers/internal/models"

type Input struct {
	ClientID    string                    `json:"clientId,omitempty"`
	Trainers    []models.Trainer          `json:"trainers"`
	Preferences models.ClientPreferences  `json:"clientPreferences"`
	RandomSeed  *int64                    `json:"randomSeed,omitempty"`
}

type Output struct {
	MatchedTrainers  []models.ScoredTrainer   `json:"matchedTrainers"`
	ExcludedTrainers []models.ExcludedTrainer `json:"excludedTrainers"`
	ExclusionSummary models.ExclusionSummary  `json:"exclusionSummary"`
	HasMatches       bool                     `json:"hasMatches"`
	TopMatches       []models.ScoredTrainer   `json:"topMatches"`
	GoodMatches      []models.ScoredTrainer   `json:"goodMatches"`
	AllTrainers      []models.ScoredTrainer   `json:"allTrainers"`
	ConfigVersion    int                      `json:"configVersion,omitempty"`
}
