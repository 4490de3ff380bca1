// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "fitmatch-workers/internal/models"

type Input struct {
	Trainer     models.Trainer           `json:"trainer"`
	Preferences models.ClientPreferences `json:"clientPreferences"`
	RandomSeed  *int64                   `json:"randomSeed,omitempty"`
}

type Output struct {
	Score                   int                  `json:"score"`
	MatchReasons            []string             `json:"matchReasons"`
	ScoreBreakdown          []models.ScoreDetail `json:"scoreBreakdown"`
	CompatibilityPercentage int                  `json:"compatibilityPercentage"`
}
