// internal/matching/scoring.go
package matching

import (
	"fmt"
	"math"
	"strings"

	"fitmatch-workers/internal/models"
)

// MinimumBaselineScore is the floor applied to every computed score.
// A client is never shown a 0% match.
const MinimumBaselineScore = 45

// styleSynonyms maps a preferred coaching style tag to the keywords that
// count as a match inside the trainer's vibe and communication-style text.
var styleSynonyms = map[string][]string{
	"motivational": {"motivat", "encourag", "positive", "energetic"},
	"strict":       {"strict", "disciplin", "tough", "structured"},
	"supportive":   {"support", "patient", "understanding", "caring"},
	"technical":    {"technical", "scientific", "data", "analytical", "methodical"},
	"flexible":     {"flexible", "adaptable", "casual", "relaxed"},
}

// categoryPresentation carries the icon/color refs surfaced per breakdown entry.
type categoryPresentation struct {
	label string
	icon  string
	color string
}

var categoryPresentations = map[models.WeightCategory]categoryPresentation{
	models.CategoryGoalsSpecialties:  {"Goals", "target", "emerald"},
	models.CategoryLocationFormat:    {"Location", "map-pin", "sky"},
	models.CategoryCoachingStyle:     {"Coaching Style", "message-circle", "violet"},
	models.CategoryScheduleFrequency: {"Availability", "calendar", "amber"},
	models.CategoryBudgetFit:         {"Budget", "wallet", "lime"},
	models.CategoryExperienceLevel:   {"Experience", "award", "rose"},
	models.CategoryAvailabilityTiming: {"Timing", "clock", "slate"},
}

// ScoringEngine computes a weighted compatibility score per trainer. It holds
// immutable snapshots only and performs no I/O, so it is safe to share across
// concurrent requests.
type ScoringEngine struct {
	cfg      *models.MatchingAlgorithmConfig
	weights  map[models.WeightCategory]models.WeightConfig
	mappings models.GoalMappings
	rng      Rand
}

func NewScoringEngine(cfg *models.MatchingAlgorithmConfig, weights map[models.WeightCategory]models.WeightConfig, mappings models.GoalMappings, rng Rand) *ScoringEngine {
	return &ScoringEngine{
		cfg:      cfg,
		weights:  weights,
		mappings: mappings,
		rng:      rng,
	}
}

// Score computes the MatchScore for one trainer. Without any preference data
// it produces the randomized baseline so pre-quiz browsing still shows
// plausible variation.
func (e *ScoringEngine) Score(trainer *models.Trainer, prefs *models.ClientPreferences) models.MatchScore {
	if !prefs.HasData() {
		return e.fallbackScore(trainer)
	}

	view := newPrefsView(prefs)

	var accumulated float64
	var reasons []string
	var breakdown []models.ScoreDetail

	for _, category := range models.AllWeightCategories {
		weight, ok := e.weights[category]
		if !ok || weight.Value <= 0 {
			continue
		}

		subScore, applied, reason := e.categoryScore(category, trainer, view)
		if !applied {
			continue
		}

		accumulated += subScore * weight.Value / 100
		if reason != "" {
			reasons = append(reasons, reason)
		}

		pres := categoryPresentations[category]
		breakdown = append(breakdown, models.ScoreDetail{
			Category: pres.label,
			Score:    math.Round(subScore),
			Icon:     pres.icon,
			Color:    pres.color,
		})
	}

	accumulated = e.applyAdjustments(accumulated, trainer, view)

	if e.cfg != nil && e.cfg.FeatureFlags.EnableIdealClientBonus {
		if bonus := idealClientBonus(trainer, view, e.mappings); bonus > 0 {
			accumulated = math.Min(accumulated+bonus, 100)
		}
	}

	score := int(math.Round(accumulated))
	if score < MinimumBaselineScore {
		score = MinimumBaselineScore
	}

	if len(reasons) == 0 {
		reasons = genericReasons(trainer)
		if len(reasons) > 2 {
			reasons = reasons[:2]
		}
	}

	return models.MatchScore{
		Score:                   score,
		Reasons:                 reasons,
		Breakdown:               breakdown,
		CompatibilityPercentage: score,
	}
}

// categoryScore dispatches one weight category to its scoring routine. The
// switch is total over models.AllWeightCategories so a new category cannot be
// added without a routine (or an explicit skip) here.
func (e *ScoringEngine) categoryScore(category models.WeightCategory, trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	switch category {
	case models.CategoryGoalsSpecialties:
		return e.scoreGoals(trainer, view)
	case models.CategoryLocationFormat:
		return scoreLocationFormat(trainer, view)
	case models.CategoryCoachingStyle:
		return scoreCoachingStyle(trainer, view)
	case models.CategoryScheduleFrequency:
		return scoreScheduleFrequency(view)
	case models.CategoryBudgetFit:
		return e.scoreBudgetFit(trainer, view)
	case models.CategoryExperienceLevel:
		return scoreExperienceFit(trainer, view)
	case models.CategoryAvailabilityTiming:
		// Weight reserved for calendar-aware scoring; no routine yet.
		return 0, false, ""
	}
	return 0, false, ""
}

// scoreGoals rates goal-to-specialty alignment through the mapping table.
// Unmapped goals stay in the denominator at full weight so they drag the
// average down instead of being silently dropped.
func (e *ScoringEngine) scoreGoals(trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	if len(view.goals) == 0 {
		return 0, false, ""
	}

	var earned, possible float64
	matched := 0

	for _, goal := range view.goals {
		mappings := e.mappings[goal]
		if len(mappings) == 0 {
			possible += 100
			if specialtyKeywordMatch(trainer.Specialties, goal) {
				earned += 100
				matched++
			}
			continue
		}

		goalMax := 0
		best := 0
		for _, mapping := range mappings {
			if mapping.Weight > goalMax {
				goalMax = mapping.Weight
			}
			if trainerHasSpecialty(trainer.Specialties, mapping.SpecialtyName) && mapping.Weight > best {
				best = mapping.Weight
			}
		}

		possible += float64(goalMax)
		earned += float64(best)
		if best > 0 {
			matched++
		}
	}

	if possible == 0 {
		return 0, false, ""
	}

	subScore := math.Round(earned / possible * 100)
	reason := ""
	if matched > 0 {
		reason = fmt.Sprintf("%d/%d goals align with expertise", matched, len(view.goals))
	}
	return subScore, true, reason
}

func scoreLocationFormat(trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	if view.locationPreference == "" {
		return 0, false, ""
	}
	// Hybrid clients match any trainer in full.
	if view.locationPreference == locationHybrid {
		return 100, true, "Flexible with your training location"
	}
	if len(trainer.DeliveryFormats) == 0 {
		return 0, false, ""
	}

	keywords := inPersonKeywords
	reason := "Offers in-person training"
	if view.locationPreference == locationOnline {
		keywords = onlineKeywords
		reason = "Offers online coaching"
	}

	if offersAnyFormat(trainer.DeliveryFormats, keywords) {
		return 100, true, reason
	}
	if view.openToVirtual {
		return 70, true, ""
	}
	return 0, true, ""
}

func scoreCoachingStyle(trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	if len(view.preferredStyles) == 0 {
		return 0, false, ""
	}

	haystack := strings.ToLower(trainer.Vibe + " " + trainer.CommunicationStyle + " " + strings.Join(trainer.CoachingStyles, " "))

	matched := 0
	for _, style := range view.preferredStyles {
		keywords, ok := styleSynonyms[strings.ToLower(style)]
		if !ok {
			keywords = []string{strings.ToLower(style)}
		}
		for _, keyword := range keywords {
			if strings.Contains(haystack, keyword) {
				matched++
				break
			}
		}
	}

	subScore := float64(matched) / float64(len(view.preferredStyles)) * 100
	reason := ""
	if matched > 0 {
		reason = "Coaching style matches your preferences"
	}
	return subScore, true, reason
}

// scoreScheduleFrequency is intentionally coarse: the engine does not model
// trainer calendars, so the baseline expresses "can likely accommodate".
func scoreScheduleFrequency(view *prefsView) (float64, bool, string) {
	if view.preferredFrequency == "" && !view.flexibleSchedule {
		return 0, false, ""
	}
	if view.flexibleSchedule {
		return 100, true, "Fits your flexible schedule"
	}
	return 85, true, ""
}

func (e *ScoringEngine) scoreBudgetFit(trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	if view.budgetMax <= 0 {
		return 0, false, ""
	}
	minPrice, ok := trainer.MinimumPrice()
	if !ok {
		return 0, false, ""
	}

	if minPrice >= view.budgetMin && minPrice <= view.budgetMax {
		return 100, true, "Within your budget"
	}

	switch view.budgetFlexibility {
	case "flexible":
		tolerance := 10.0
		if e.cfg != nil && e.cfg.Budget.SoftTolerancePercent > 0 {
			tolerance = e.cfg.Budget.SoftTolerancePercent
		}
		lower := view.budgetMin * (1 - tolerance/100)
		upper := view.budgetMax * (1 + tolerance/100)
		if minPrice >= lower && minPrice <= upper {
			return 100, true, "Close to your budget"
		}
		return 0, true, ""
	case "negotiable":
		return 60, true, ""
	}
	return 0, true, ""
}

// scoreExperienceFit never returns 0: an experience mismatch is a soft
// signal only.
func scoreExperienceFit(trainer *models.Trainer, view *prefsView) (float64, bool, string) {
	if view.experienceLevel == "" {
		return 0, false, ""
	}

	matched := false
	reason := ""
	switch view.experienceLevel {
	case "beginner":
		matched = trainer.Rating >= 4.7
		reason = "Highly rated with beginners"
	case "intermediate":
		matched = trainer.Rating >= 4.5
		reason = "Strong track record at your level"
	case "advanced":
		matched = trainer.ExperienceYears >= 5 && trainer.Rating >= 4.5
		reason = "Deep experience for advanced training"
	default:
		return 0, false, ""
	}

	if matched {
		return 100, true, reason
	}
	return 70, true, ""
}

// applyAdjustments applies the multiplicative gender and discovery-call
// policies to the accumulated score. The gender penalty applies whenever a
// preference and a differing known gender exist, independently of the hard
// exclusion flag; the two policies are deliberately separate.
func (e *ScoringEngine) applyAdjustments(accumulated float64, trainer *models.Trainer, view *prefsView) float64 {
	if view.genderPreference != "" && !isNoPreference(view.genderPreference) && trainer.Gender != "" {
		if !strings.EqualFold(view.genderPreference, trainer.Gender) {
			accumulated *= 0.3
		}
	}

	if view.discoveryCallPref == "required" {
		if trainer.OffersDiscoveryCall {
			accumulated = math.Min(accumulated*1.1, 100)
		} else if e.cfg == nil || e.cfg.FeatureFlags.EnableDiscoveryCallPenalty {
			accumulated *= 0.8
		}
	}

	return accumulated
}

// idealClientBonus grants a small boost when the trainer's specialties cover
// every stated goal.
func idealClientBonus(trainer *models.Trainer, view *prefsView, mappings models.GoalMappings) float64 {
	if len(view.goals) == 0 {
		return 0
	}
	for _, goal := range view.goals {
		covered := specialtyKeywordMatch(trainer.Specialties, goal)
		for _, mapping := range mappings[goal] {
			if trainerHasSpecialty(trainer.Specialties, mapping.SpecialtyName) {
				covered = true
				break
			}
		}
		if !covered {
			return 0
		}
	}
	return 5
}

// fallbackScore produces the randomized baseline for clients with no
// preference data: a plausible-looking spread instead of identical scores.
func (e *ScoringEngine) fallbackScore(trainer *models.Trainer) models.MatchScore {
	score := 50 + int(e.rng.Float64()*20) // [50,70)

	breakdown := []models.ScoreDetail{
		{Category: "Goals", Score: math.Round(60 + e.rng.Float64()*30), Icon: "target", Color: "emerald"},
		{Category: "Location", Score: math.Round(50 + e.rng.Float64()*40), Icon: "map-pin", Color: "sky"},
		{Category: "Availability", Score: math.Round(60 + e.rng.Float64()*35), Icon: "calendar", Color: "amber"},
		{Category: "Budget", Score: math.Round(50 + e.rng.Float64()*35), Icon: "wallet", Color: "lime"},
	}

	return models.MatchScore{
		Score:                   score,
		Reasons:                 genericReasons(trainer),
		Breakdown:               breakdown,
		CompatibilityPercentage: score,
	}
}

func genericReasons(trainer *models.Trainer) []string {
	reasons := []string{
		fmt.Sprintf("%d years of coaching experience", trainer.ExperienceYears),
	}
	if len(trainer.Specialties) > 0 {
		reasons = append(reasons, fmt.Sprintf("Specializes in %s", trainer.Specialties[0]))
	}
	if len(trainer.Specialties) > 1 {
		reasons = append(reasons, fmt.Sprintf("Also covers %s", trainer.Specialties[1]))
	}
	return reasons
}

func trainerHasSpecialty(specialties []string, name string) bool {
	for _, specialty := range specialties {
		if strings.EqualFold(strings.TrimSpace(specialty), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// specialtyKeywordMatch is the fallback for goals without mapping rows:
// the goal key, with underscores spelled out, matched as a substring.
func specialtyKeywordMatch(specialties []string, goalKey string) bool {
	needle := strings.ToLower(strings.ReplaceAll(goalKey, "_", " "))
	if needle == "" {
		return false
	}
	for _, specialty := range specialties {
		if strings.Contains(strings.ToLower(specialty), needle) {
			return true
		}
	}
	return false
}
