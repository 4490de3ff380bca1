// internal/models/matchconfig.go
package models

import "time"

// WeightCategory identifies one independently-configurable scoring dimension.
type WeightCategory string

const (
	CategoryGoalsSpecialties  WeightCategory = "goals_specialties"
	CategoryLocationFormat    WeightCategory = "location_format"
	CategoryCoachingStyle     WeightCategory = "coaching_style"
	CategoryScheduleFrequency WeightCategory = "schedule_frequency"
	CategoryBudgetFit         WeightCategory = "budget_fit"
	CategoryExperienceLevel   WeightCategory = "experience_level"
	CategoryAvailabilityTiming WeightCategory = "availability_timing"
)

// AllWeightCategories lists every category in scoring order.
var AllWeightCategories = []WeightCategory{
	CategoryGoalsSpecialties,
	CategoryLocationFormat,
	CategoryCoachingStyle,
	CategoryScheduleFrequency,
	CategoryBudgetFit,
	CategoryExperienceLevel,
	CategoryAvailabilityTiming,
}

// WeightConfig is one category's contribution percentage with its admin-editable bounds.
type WeightConfig struct {
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Thresholds are the presentation-facing score cutoffs.
type Thresholds struct {
	MinScoreToDisplay float64 `json:"min_score_to_display"`
	GoodMatch         float64 `json:"good_match"`
	TopMatch          float64 `json:"top_match"`
}

// BudgetSettings drive the soft-tolerance scoring and the hard exclusion ceiling.
type BudgetSettings struct {
	SoftTolerancePercent float64 `json:"soft_tolerance_percent"`
	HardExclusionPercent float64 `json:"hard_exclusion_percent"`
}

// PackageBoundary defines a named session-count band for package matching.
type PackageBoundary struct {
	Name        string `json:"name"`
	MinSessions int    `json:"min_sessions"`
	MaxSessions int    `json:"max_sessions"`
}

// AvailabilityRules define which start timelines trigger the availability rule.
type AvailabilityRules struct {
	ImmediateTimelines []string `json:"immediate_timelines"`
}

// FeatureFlags toggle independent scoring/exclusion policies.
type FeatureFlags struct {
	EnableHardExclusions       bool `json:"enable_hard_exclusions"`
	EnableIdealClientBonus     bool `json:"enable_ideal_client_bonus"`
	EnableDiscoveryCallPenalty bool `json:"enable_discovery_call_penalty"`
}

// MatchingAlgorithmConfig is one version's full payload.
type MatchingAlgorithmConfig struct {
	Weights           map[WeightCategory]WeightConfig `json:"weights"`
	Thresholds        Thresholds                      `json:"thresholds"`
	Budget            BudgetSettings                  `json:"budget"`
	PackageBoundaries []PackageBoundary               `json:"package_boundaries,omitempty"`
	Availability      AvailabilityRules               `json:"availability"`
	FeatureFlags      FeatureFlags                    `json:"feature_flags"`
}

// ConfigStatus is the lifecycle state of a config version.
type ConfigStatus string

const (
	ConfigStatusDraft    ConfigStatus = "draft"
	ConfigStatusLive     ConfigStatus = "live"
	ConfigStatusArchived ConfigStatus = "archived"
)

// ConfigVersion is a versioned MatchingAlgorithmConfig record.
// Exactly one version is live at any time; only drafts may be mutated.
type ConfigVersion struct {
	ID          string                  `json:"id"`
	Version     int                     `json:"version"`
	Status      ConfigStatus            `json:"status"`
	Config      MatchingAlgorithmConfig `json:"config"`
	CreatedBy   string                  `json:"createdBy"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	PublishedAt *time.Time              `json:"publishedAt,omitempty"`
}
