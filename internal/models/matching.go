// internal/models/matching.go
package models

// ExclusionType tags which hard rule removed a trainer.
type ExclusionType string

const (
	ExclusionGender       ExclusionType = "gender"
	ExclusionFormat       ExclusionType = "format"
	ExclusionBudget       ExclusionType = "budget"
	ExclusionAvailability ExclusionType = "availability"
)

// ExcludedTrainer records one trainer removed by a hard exclusion rule.
// Exactly one exclusion type is ever recorded per trainer: rules run in
// gender -> format -> budget -> availability order and the first hit wins.
type ExcludedTrainer struct {
	Trainer Trainer       `json:"trainer"`
	Reason  string        `json:"reason"`
	Type    ExclusionType `json:"exclusionType"`
}

// ExclusionSummary aggregates exclusion counts per type.
// Total always equals the sum of the four typed counters.
type ExclusionSummary struct {
	Gender       int `json:"gender"`
	Format       int `json:"format"`
	Budget       int `json:"budget"`
	Availability int `json:"availability"`
	Total        int `json:"total"`
}

// ScoreDetail is one per-category entry in a trainer's score breakdown.
type ScoreDetail struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
}

// MatchScore is the scoring result for one included trainer.
// Score is clamped to the baseline floor so a client never sees a 0% match.
type MatchScore struct {
	Score                   int           `json:"score"`
	Reasons                 []string      `json:"matchReasons"`
	Breakdown               []ScoreDetail `json:"scoreBreakdown"`
	CompatibilityPercentage int           `json:"compatibilityPercentage"`
}

// ScoredTrainer pairs a trainer with its computed match score.
type ScoredTrainer struct {
	Trainer Trainer    `json:"trainer"`
	Match   MatchScore `json:"match"`
}

// EnhancedMatchingResult is the full output of one match computation.
type EnhancedMatchingResult struct {
	MatchedTrainers  []ScoredTrainer   `json:"matchedTrainers"`
	ExcludedTrainers []ExcludedTrainer `json:"excludedTrainers"`
	ExclusionSummary ExclusionSummary  `json:"exclusionSummary"`
	HasMatches       bool              `json:"hasMatches"`
	TopMatches       []ScoredTrainer   `json:"topMatches"`
	GoodMatches      []ScoredTrainer   `json:"goodMatches"`
	AllTrainers      []ScoredTrainer   `json:"allTrainers"`
}
