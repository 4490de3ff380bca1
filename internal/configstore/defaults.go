// internal/configstore/defaults.go
package configstore

import "fitmatch-workers/internal/models"

// DefaultWeights is the documented fallback weight set used when no live
// config version exists. The sum is advisory only; the engine never
// normalizes it.
func DefaultWeights() map[models.WeightCategory]models.WeightConfig {
	return map[models.WeightCategory]models.WeightConfig{
		models.CategoryGoalsSpecialties:   {Value: 25, Min: 10, Max: 40},
		models.CategoryLocationFormat:     {Value: 20, Min: 10, Max: 30},
		models.CategoryCoachingStyle:      {Value: 15, Min: 5, Max: 25},
		models.CategoryScheduleFrequency:  {Value: 10, Min: 5, Max: 20},
		models.CategoryBudgetFit:          {Value: 15, Min: 5, Max: 25},
		models.CategoryExperienceLevel:    {Value: 10, Min: 5, Max: 20},
		models.CategoryAvailabilityTiming: {Value: 5, Min: 0, Max: 15},
	}
}

// DefaultConfig is the fallback algorithm config used when no version has
// ever been published.
func DefaultConfig() models.MatchingAlgorithmConfig {
	return models.MatchingAlgorithmConfig{
		Weights: DefaultWeights(),
		Thresholds: models.Thresholds{
			MinScoreToDisplay: 50,
			GoodMatch:         60,
			TopMatch:          70,
		},
		Budget: models.BudgetSettings{
			SoftTolerancePercent: 20,
			HardExclusionPercent: 40,
		},
		PackageBoundaries: []models.PackageBoundary{
			{Name: "starter", MinSessions: 1, MaxSessions: 4},
			{Name: "standard", MinSessions: 5, MaxSessions: 12},
			{Name: "commitment", MinSessions: 13, MaxSessions: 52},
		},
		Availability: models.AvailabilityRules{
			ImmediateTimelines: []string{"asap"},
		},
		FeatureFlags: models.FeatureFlags{
			EnableHardExclusions:       true,
			EnableIdealClientBonus:     false,
			EnableDiscoveryCallPenalty: true,
		},
	}
}
