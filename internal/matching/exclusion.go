// internal/matching/exclusion.go
package matching

import (
	"fmt"
	"strings"

	"fitmatch-workers/internal/models"
)

// ExclusionResult splits a candidate pool into included and excluded sets.
// Included trainers keep their input order; excluded trainers are listed in
// the order exclusions were found.
type ExclusionResult struct {
	Included []models.Trainer
	Excluded []models.ExcludedTrainer
	Summary  models.ExclusionSummary
}

// ApplyHardExclusions filters the trainer pool against the four hard rules.
// Rules run in gender -> format -> budget -> availability order and the first
// matching rule excludes the trainer; later rules are skipped for it.
// With exclusions disabled or no preferences, every trainer is included.
func ApplyHardExclusions(trainers []models.Trainer, prefs *models.ClientPreferences, cfg *models.MatchingAlgorithmConfig) ExclusionResult {
	result := ExclusionResult{
		Included: make([]models.Trainer, 0, len(trainers)),
	}

	if cfg == nil || !cfg.FeatureFlags.EnableHardExclusions || !prefs.HasData() {
		result.Included = append(result.Included, trainers...)
		return result
	}

	view := newPrefsView(prefs)

	for _, trainer := range trainers {
		if excluded, ok := checkGenderRule(&trainer, view); ok {
			result.Excluded = append(result.Excluded, excluded)
			result.Summary.Gender++
			continue
		}
		if excluded, ok := checkFormatRule(&trainer, view); ok {
			result.Excluded = append(result.Excluded, excluded)
			result.Summary.Format++
			continue
		}
		if excluded, ok := checkBudgetRule(&trainer, view, cfg.Budget.HardExclusionPercent); ok {
			result.Excluded = append(result.Excluded, excluded)
			result.Summary.Budget++
			continue
		}
		if excluded, ok := checkAvailabilityRule(&trainer, view, cfg.Availability.ImmediateTimelines); ok {
			result.Excluded = append(result.Excluded, excluded)
			result.Summary.Availability++
			continue
		}
		result.Included = append(result.Included, trainer)
	}

	result.Summary.Total = result.Summary.Gender + result.Summary.Format +
		result.Summary.Budget + result.Summary.Availability

	return result
}

func checkGenderRule(t *models.Trainer, p *prefsView) (models.ExcludedTrainer, bool) {
	if p.genderPreference == "" || isNoPreference(p.genderPreference) || t.Gender == "" {
		return models.ExcludedTrainer{}, false
	}
	if !strings.EqualFold(p.genderPreference, t.Gender) {
		return models.ExcludedTrainer{
			Trainer: *t,
			Reason:  fmt.Sprintf("client prefers %s trainers", strings.ToLower(p.genderPreference)),
			Type:    models.ExclusionGender,
		}, true
	}
	return models.ExcludedTrainer{}, false
}

func checkFormatRule(t *models.Trainer, p *prefsView) (models.ExcludedTrainer, bool) {
	// Hybrid preference and missing trainer format data never exclude.
	if len(t.DeliveryFormats) == 0 {
		return models.ExcludedTrainer{}, false
	}

	switch p.locationPreference {
	case locationInPerson:
		if !offersAnyFormat(t.DeliveryFormats, inPersonKeywords) && !p.openToVirtual {
			return models.ExcludedTrainer{
				Trainer: *t,
				Reason:  "no in-person training offered",
				Type:    models.ExclusionFormat,
			}, true
		}
	case locationOnline:
		if !offersAnyFormat(t.DeliveryFormats, onlineKeywords) {
			return models.ExcludedTrainer{
				Trainer: *t,
				Reason:  "no online training offered",
				Type:    models.ExclusionFormat,
			}, true
		}
	}

	return models.ExcludedTrainer{}, false
}

func checkBudgetRule(t *models.Trainer, p *prefsView, hardExclusionPercent float64) (models.ExcludedTrainer, bool) {
	if p.budgetMax <= 0 {
		return models.ExcludedTrainer{}, false
	}
	minPrice, ok := t.MinimumPrice()
	if !ok {
		return models.ExcludedTrainer{}, false
	}

	ceiling := p.budgetMax * (1 + hardExclusionPercent/100)
	if minPrice > ceiling {
		return models.ExcludedTrainer{
			Trainer: *t,
			Reason:  fmt.Sprintf("minimum price %.0f exceeds budget ceiling %.0f", minPrice, ceiling),
			Type:    models.ExclusionBudget,
		}, true
	}
	return models.ExcludedTrainer{}, false
}

func checkAvailabilityRule(t *models.Trainer, p *prefsView, immediateTimelines []string) (models.ExcludedTrainer, bool) {
	if !isImmediateTimeline(p.startTimeline, immediateTimelines) {
		return models.ExcludedTrainer{}, false
	}
	// Only an explicit "not accepting" flag excludes; unknown never does.
	if t.AcceptingNewClients != nil && !*t.AcceptingNewClients {
		return models.ExcludedTrainer{
			Trainer: *t,
			Reason:  "not accepting new clients",
			Type:    models.ExclusionAvailability,
		}, true
	}
	return models.ExcludedTrainer{}, false
}

func isImmediateTimeline(timeline string, immediateTimelines []string) bool {
	if timeline == "" {
		return false
	}
	if len(immediateTimelines) == 0 {
		return strings.EqualFold(timeline, "asap")
	}
	for _, t := range immediateTimelines {
		if strings.EqualFold(timeline, t) {
			return true
		}
	}
	return false
}

func isNoPreference(value string) bool {
	normalized := strings.ToLower(strings.TrimSpace(value))
	return normalized == "no_preference" || normalized == "no preference" || normalized == "any"
}

var (
	inPersonKeywords = []string{"person", "gym", "studio"}
	onlineKeywords   = []string{"online", "virtual", "remote"}
)

func offersAnyFormat(formats []string, keywords []string) bool {
	for _, format := range formats {
		lower := strings.ToLower(format)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
