// internal/models/preferences.go
package models

// ClientPreferences is the immutable per-request snapshot of what the client
// asked for. Either shape may be present; when both are nil the engine falls
// back to randomized baseline scoring.
type ClientPreferences struct {
	Quiz   *QuizAnswers `json:"quiz,omitempty"`
	Survey *SurveyData  `json:"survey,omitempty"`
}

// HasData reports whether any preference input exists.
func (p *ClientPreferences) HasData() bool {
	return p != nil && (p.Quiz != nil || p.Survey != nil)
}

// QuizAnswers is the legacy flat answer bag.
type QuizAnswers struct {
	Goals             []string `json:"goals"`
	BudgetBucket      string   `json:"budget_bucket"`
	CoachingStyles    []string `json:"coaching_styles"`
	ExperienceLevel   string   `json:"experience_level"`
	TrainingTypes     []string `json:"training_types"`
	SessionPreference string   `json:"session_preference"`
	WorkoutFrequency  string   `json:"workout_frequency"`
}

// SurveyData is the richer survey record shape.
type SurveyData struct {
	PrimaryGoals               []string `json:"primary_goals"`
	SecondaryGoals             []string `json:"secondary_goals"`
	TrainingLocationPreference string   `json:"training_location_preference"` // in-person | online | hybrid
	OpenToVirtualCoaching      bool     `json:"open_to_virtual_coaching"`
	PreferredFrequency         string   `json:"preferred_training_frequency"`
	FlexibleSchedule           bool     `json:"flexible_schedule"`
	TimeSlots                  []string `json:"time_slots"`
	StartTimeline              string   `json:"start_timeline"` // asap | within_month | exploring
	PreferredCoachingStyles    []string `json:"preferred_coaching_styles"`
	MotivationFactors          []string `json:"motivation_factors"`
	PersonalityTags            []string `json:"personality_tags"`
	ExperienceLevel            string   `json:"experience_level"` // beginner | intermediate | advanced
	PreferredPackageType       string   `json:"preferred_package_type"`
	BudgetRangeMin             float64  `json:"budget_range_min"`
	BudgetRangeMax             float64  `json:"budget_range_max"`
	BudgetFlexibility          string   `json:"budget_flexibility"` // exact | flexible | negotiable
	TrainerGenderPreference    string   `json:"trainer_gender_preference"`
	DiscoveryCallPreference    string   `json:"discovery_call_preference"` // required | preferred | not_needed
}
