// internal/matching/diversity.go
package matching

import (
	"sort"

	"fitmatch-workers/internal/models"
)

// Score tiers for diversity bucketing.
const (
	highTierFloor   = 75
	mediumTierFloor = 60
)

// scoreTieBreakMargin: trainers this close in score are ordered by rating instead.
const scoreTieBreakMargin = 3

// ReorderForDiversity buckets scored trainers by tier, shuffles within each
// tier, and round-robin interleaves the tiers. Scores are never mutated; the
// goal is representation from every tier near the top of the list rather than
// a wall of near-identical top matches.
func ReorderForDiversity(scored []models.ScoredTrainer, rng Rand) []models.ScoredTrainer {
	if len(scored) <= 1 {
		return append([]models.ScoredTrainer(nil), scored...)
	}

	ordered := append([]models.ScoredTrainer(nil), scored...)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, sj := ordered[i].Match.Score, ordered[j].Match.Score
		diff := si - sj
		if diff < 0 {
			diff = -diff
		}
		if diff < scoreTieBreakMargin {
			return ordered[i].Trainer.Rating > ordered[j].Trainer.Rating
		}
		return si > sj
	})

	var high, medium, low []models.ScoredTrainer
	for _, st := range ordered {
		switch {
		case st.Match.Score >= highTierFloor:
			high = append(high, st)
		case st.Match.Score >= mediumTierFloor:
			medium = append(medium, st)
		default:
			low = append(low, st)
		}
	}

	shuffleTier(high, rng)
	shuffleTier(medium, rng)
	shuffleTier(low, rng)

	return interleave(high, medium, low)
}

func shuffleTier(tier []models.ScoredTrainer, rng Rand) {
	rng.Shuffle(len(tier), func(i, j int) {
		tier[i], tier[j] = tier[j], tier[i]
	})
}

// interleave rotates through the tiers taking one trainer at a time; an
// exhausted tier is skipped in the rotation.
func interleave(tiers ...[]models.ScoredTrainer) []models.ScoredTrainer {
	total := 0
	for _, tier := range tiers {
		total += len(tier)
	}

	result := make([]models.ScoredTrainer, 0, total)
	indexes := make([]int, len(tiers))

	for len(result) < total {
		for t, tier := range tiers {
			if indexes[t] < len(tier) {
				result = append(result, tier[indexes[t]])
				indexes[t]++
			}
		}
	}

	return result
}
