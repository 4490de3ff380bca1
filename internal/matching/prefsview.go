// internal/matching/prefsview.go
package matching

import (
	"strings"

	"fitmatch-workers/internal/models"
)

const (
	locationInPerson = "in-person"
	locationOnline   = "online"
	locationHybrid   = "hybrid"
)

// quizBudgetBuckets maps legacy quiz budget buckets to price ranges.
var quizBudgetBuckets = map[string][2]float64{
	"budget":   {0, 50},
	"moderate": {50, 100},
	"premium":  {100, 200},
	"luxury":   {200, 10000},
}

// prefsView is the normalized merge of the legacy quiz and the survey record.
// Survey fields win when both are present.
type prefsView struct {
	goals              []string
	locationPreference string
	openToVirtual      bool
	preferredStyles    []string
	preferredFrequency string
	flexibleSchedule   bool
	budgetMin          float64
	budgetMax          float64
	budgetFlexibility  string
	experienceLevel    string
	genderPreference   string
	discoveryCallPref  string
	startTimeline      string
}

func newPrefsView(prefs *models.ClientPreferences) *prefsView {
	view := &prefsView{}
	if prefs == nil {
		return view
	}

	if quiz := prefs.Quiz; quiz != nil {
		view.goals = quiz.Goals
		view.preferredStyles = quiz.CoachingStyles
		view.experienceLevel = strings.ToLower(quiz.ExperienceLevel)
		view.preferredFrequency = quiz.WorkoutFrequency
		view.locationPreference = normalizeLocation(quiz.SessionPreference)
		if bucket, ok := quizBudgetBuckets[strings.ToLower(quiz.BudgetBucket)]; ok {
			view.budgetMin = bucket[0]
			view.budgetMax = bucket[1]
			view.budgetFlexibility = "exact"
		}
	}

	if survey := prefs.Survey; survey != nil {
		if len(survey.PrimaryGoals) > 0 {
			view.goals = survey.PrimaryGoals
		}
		if survey.TrainingLocationPreference != "" {
			view.locationPreference = normalizeLocation(survey.TrainingLocationPreference)
		}
		view.openToVirtual = survey.OpenToVirtualCoaching
		if len(survey.PreferredCoachingStyles) > 0 {
			view.preferredStyles = survey.PreferredCoachingStyles
		}
		if survey.PreferredFrequency != "" {
			view.preferredFrequency = survey.PreferredFrequency
		}
		view.flexibleSchedule = survey.FlexibleSchedule
		if survey.BudgetRangeMax > 0 {
			view.budgetMin = survey.BudgetRangeMin
			view.budgetMax = survey.BudgetRangeMax
			view.budgetFlexibility = strings.ToLower(survey.BudgetFlexibility)
		}
		if survey.ExperienceLevel != "" {
			view.experienceLevel = strings.ToLower(survey.ExperienceLevel)
		}
		view.genderPreference = survey.TrainerGenderPreference
		view.discoveryCallPref = strings.ToLower(survey.DiscoveryCallPreference)
		view.startTimeline = survey.StartTimeline
	}

	return view
}

func normalizeLocation(value string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), "_", "-")) {
	case "in-person", "inperson", "gym", "studio":
		return locationInPerson
	case "online", "virtual", "remote":
		return locationOnline
	case "hybrid", "both":
		return locationHybrid
	}
	return ""
}
