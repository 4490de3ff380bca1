// internal/workers/matching/diversity-reorder/handler_test.go
package diversityreorder

import (
	"context"
	"testing"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	return NewHandler(&Config{Timeout: 10 * time.Second}, logger.NewNoOpLogger())
}

func scoredTrainer(id string, score int, rating float64) models.ScoredTrainer {
	return models.ScoredTrainer{
		Trainer: models.Trainer{ID: id, Rating: rating},
		Match:   models.MatchScore{Score: score, CompatibilityPercentage: score},
	}
}

func TestExecute_PreservesAllTrainersAndScores(t *testing.T) {
	h := newTestHandler()
	seed := int64(3)

	input := &Input{
		ScoredTrainers: []models.ScoredTrainer{
			scoredTrainer("a", 90, 4.9),
			scoredTrainer("b", 82, 4.7),
			scoredTrainer("c", 68, 4.8),
			scoredTrainer("d", 55, 4.2),
			scoredTrainer("e", 48, 4.0),
		},
		RandomSeed: &seed,
	}

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, output.ReorderedTrainers, 5)

	// Reordering moves trainers around but never touches their scores.
	byID := map[string]int{}
	for _, st := range output.ReorderedTrainers {
		byID[st.Trainer.ID] = st.Match.Score
	}
	for _, st := range input.ScoredTrainers {
		assert.Equal(t, st.Match.Score, byID[st.Trainer.ID])
	}
}

func TestExecute_TopThreeSpanTiers(t *testing.T) {
	h := newTestHandler()
	seed := int64(11)

	output, err := h.Execute(context.Background(), &Input{
		ScoredTrainers: []models.ScoredTrainer{
			scoredTrainer("high-1", 92, 4.9),
			scoredTrainer("high-2", 88, 4.8),
			scoredTrainer("mid-1", 70, 4.6),
			scoredTrainer("mid-2", 65, 4.5),
			scoredTrainer("low-1", 50, 4.1),
		},
		RandomSeed: &seed,
	})
	require.NoError(t, err)
	require.Len(t, output.ReorderedTrainers, 5)

	// Round-robin interleave: with all three tiers populated, the first
	// three slots hold one trainer from each tier.
	tierOf := func(score int) string {
		switch {
		case score >= 75:
			return "high"
		case score >= 60:
			return "medium"
		default:
			return "low"
		}
	}
	seen := map[string]bool{}
	for _, st := range output.ReorderedTrainers[:3] {
		seen[tierOf(st.Match.Score)] = true
	}
	assert.Len(t, seen, 3)
}

func TestExecute_DeterministicWithSeed(t *testing.T) {
	h := newTestHandler()

	pool := []models.ScoredTrainer{
		scoredTrainer("a", 90, 4.9),
		scoredTrainer("b", 85, 4.7),
		scoredTrainer("c", 80, 4.8),
		scoredTrainer("d", 65, 4.5),
	}

	seed := int64(21)
	first, err := h.Execute(context.Background(), &Input{ScoredTrainers: pool, RandomSeed: &seed})
	require.NoError(t, err)

	seed2 := int64(21)
	second, err := h.Execute(context.Background(), &Input{ScoredTrainers: pool, RandomSeed: &seed2})
	require.NoError(t, err)

	for i := range first.ReorderedTrainers {
		assert.Equal(t, first.ReorderedTrainers[i].Trainer.ID, second.ReorderedTrainers[i].Trainer.ID)
	}
}

func TestExecute_EmptyPool(t *testing.T) {
	h := newTestHandler()

	output, err := h.Execute(context.Background(), &Input{ScoredTrainers: nil})
	require.NoError(t, err)
	assert.Empty(t, output.ReorderedTrainers)
}
