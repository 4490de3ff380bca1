// internal/matching/assemble.go
package matching

import (
	"fitmatch-workers/internal/models"
)

// Engine composes exclusion, scoring, and diversity reordering into the
// single ComputeMatches entry point. It is a pure computation over the
// snapshots it is constructed with: no I/O, no shared mutable state, safe to
// call concurrently.
type Engine struct {
	cfg      *models.MatchingAlgorithmConfig
	weights  map[models.WeightCategory]models.WeightConfig
	mappings models.GoalMappings
	rng      Rand
}

func NewEngine(cfg *models.MatchingAlgorithmConfig, weights map[models.WeightCategory]models.WeightConfig, mappings models.GoalMappings, rng Rand) *Engine {
	return &Engine{
		cfg:      cfg,
		weights:  weights,
		mappings: mappings,
		rng:      rng,
	}
}

// ComputeMatches runs the full pipeline: hard exclusions, per-trainer
// scoring, diversity reordering, and bucket assembly.
func (e *Engine) ComputeMatches(trainers []models.Trainer, prefs *models.ClientPreferences) models.EnhancedMatchingResult {
	exclusion := ApplyHardExclusions(trainers, prefs, e.cfg)

	scorer := NewScoringEngine(e.cfg, e.weights, e.mappings, e.rng)
	scored := make([]models.ScoredTrainer, 0, len(exclusion.Included))
	for i := range exclusion.Included {
		trainer := exclusion.Included[i]
		scored = append(scored, models.ScoredTrainer{
			Trainer: trainer,
			Match:   scorer.Score(&trainer, prefs),
		})
	}

	reordered := ReorderForDiversity(scored, e.rng)

	return e.assemble(reordered, exclusion)
}

// assemble builds the result buckets. Cutoffs come from the active config's
// thresholds rather than hardcoded presentation defaults.
func (e *Engine) assemble(reordered []models.ScoredTrainer, exclusion ExclusionResult) models.EnhancedMatchingResult {
	thresholds := models.Thresholds{MinScoreToDisplay: 50, GoodMatch: 60, TopMatch: 70}
	if e.cfg != nil {
		thresholds = e.cfg.Thresholds
	}

	matched := make([]models.ScoredTrainer, 0, len(reordered))
	var top, good []models.ScoredTrainer

	for _, st := range reordered {
		score := float64(st.Match.Score)
		if score >= thresholds.MinScoreToDisplay {
			matched = append(matched, st)
		}
		switch {
		case score >= thresholds.TopMatch:
			top = append(top, st)
		case score >= thresholds.GoodMatch:
			good = append(good, st)
		}
	}

	return models.EnhancedMatchingResult{
		MatchedTrainers:  matched,
		ExcludedTrainers: exclusion.Excluded,
		ExclusionSummary: exclusion.Summary,
		HasMatches:       len(matched) > 0,
		TopMatches:       top,
		GoodMatches:      good,
		AllTrainers:      reordered,
	}
}
