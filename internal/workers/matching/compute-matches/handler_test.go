// internal/workers/matching/compute-matches/handler_test.go
package computematches

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConfigs struct {
	cfg *models.MatchingAlgorithmConfig
	err error
}

func (s *stubConfigs) GetActiveConfig(ctx context.Context) (*models.MatchingAlgorithmConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg, nil
}

func (s *stubConfigs) GetLiveWeights(ctx context.Context) (map[models.WeightCategory]models.WeightConfig, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cfg.Weights, nil
}

type stubMappings struct {
	mappings models.GoalMappings
	err      error
}

func (s *stubMappings) GetActiveMappings(ctx context.Context) (models.GoalMappings, error) {
	return s.mappings, s.err
}

func newTestHandler(configErr, mappingErr error) *Handler {
	cfg := configstore.DefaultConfig()
	return NewHandler(
		&Config{Timeout: 10 * time.Second, MaxPoolSize: 500},
		&stubConfigs{cfg: &cfg, err: configErr},
		&stubMappings{
			mappings: models.GoalMappings{
				"weight_loss": {
					{GoalKey: "weight_loss", SpecialtyName: "Weight Loss Coaching", Weight: 100, MappingType: models.MappingTierPrimary},
				},
			},
			err: mappingErr,
		},
		logger.NewNoOpLogger(),
	)
}

func testTrainer(id string, rate float64) models.Trainer {
	return models.Trainer{
		ID:              id,
		Name:            "Trainer " + id,
		Specialties:     []string{"Weight Loss Coaching"},
		CoachingStyles:  []string{"supportive"},
		DeliveryFormats: []string{"online"},
		HourlyRate:      rate,
		ExperienceYears: 6,
		Rating:          4.8,
	}
}

func testPreferences() models.ClientPreferences {
	return models.ClientPreferences{
		Survey: &models.SurveyData{
			PrimaryGoals:               []string{"weight_loss"},
			TrainingLocationPreference: "online",
			BudgetRangeMin:             50,
			BudgetRangeMax:             100,
			BudgetFlexibility:          "exact",
			ExperienceLevel:            "beginner",
		},
	}
}

func TestExecute_ProducesMatches(t *testing.T) {
	h := newTestHandler(nil, nil)
	seed := int64(42)

	output, err := h.Execute(context.Background(), &Input{
		ClientID:    "client-1",
		Trainers:    []models.Trainer{testTrainer("t1", 80), testTrainer("t2", 90)},
		Preferences: testPreferences(),
		RandomSeed:  &seed,
	})
	require.NoError(t, err)

	assert.True(t, output.HasMatches)
	assert.Len(t, output.AllTrainers, 2)
	assert.Empty(t, output.ExcludedTrainers)
	for _, st := range output.AllTrainers {
		assert.GreaterOrEqual(t, st.Match.Score, 45)
		assert.LessOrEqual(t, st.Match.Score, 100)
	}
}

func TestExecute_EmptyPool(t *testing.T) {
	h := newTestHandler(nil, nil)

	output, err := h.Execute(context.Background(), &Input{
		Trainers:    []models.Trainer{},
		Preferences: testPreferences(),
	})
	require.NoError(t, err)

	assert.False(t, output.HasMatches)
	assert.Empty(t, output.AllTrainers)
	assert.Equal(t, 0, output.ExclusionSummary.Total)
}

func TestExecute_NilTrainersRejected(t *testing.T) {
	h := newTestHandler(nil, nil)

	_, err := h.Execute(context.Background(), &Input{Preferences: testPreferences()})
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestExecute_InvertedBudgetRejected(t *testing.T) {
	h := newTestHandler(nil, nil)

	prefs := testPreferences()
	prefs.Survey.BudgetRangeMin = 200
	prefs.Survey.BudgetRangeMax = 100

	_, err := h.Execute(context.Background(), &Input{
		Trainers:    []models.Trainer{testTrainer("t1", 80)},
		Preferences: prefs,
	})
	assert.ErrorIs(t, err, ErrInvalidPreferences)
}

func TestExecute_ConfigLoadFailure(t *testing.T) {
	h := newTestHandler(errors.New("postgres down"), nil)

	_, err := h.Execute(context.Background(), &Input{
		Trainers:    []models.Trainer{testTrainer("t1", 80)},
		Preferences: testPreferences(),
	})
	assert.ErrorIs(t, err, ErrConfigLoadFailed)
	assert.Equal(t, "CONFIG_LOAD_FAILED", h.mapErrorToCode(err))
}

func TestExecute_MappingLoadFailure(t *testing.T) {
	h := newTestHandler(nil, errors.New("redis down"))

	_, err := h.Execute(context.Background(), &Input{
		Trainers:    []models.Trainer{testTrainer("t1", 80)},
		Preferences: testPreferences(),
	})
	assert.ErrorIs(t, err, ErrMappingLoadFailed)
}

func TestExecute_PoolTruncatedToMaxSize(t *testing.T) {
	h := newTestHandler(nil, nil)
	h.config.MaxPoolSize = 3

	pool := make([]models.Trainer, 10)
	for i := range pool {
		pool[i] = testTrainer(string(rune('a'+i)), 80)
	}

	seed := int64(7)
	output, err := h.Execute(context.Background(), &Input{
		Trainers:    pool,
		Preferences: testPreferences(),
		RandomSeed:  &seed,
	})
	require.NoError(t, err)

	assert.Len(t, output.AllTrainers, 3)
}

func TestExecute_NoPreferencesFallback(t *testing.T) {
	h := newTestHandler(nil, nil)
	seed := int64(99)

	output, err := h.Execute(context.Background(), &Input{
		Trainers:    []models.Trainer{testTrainer("t1", 80)},
		Preferences: models.ClientPreferences{},
		RandomSeed:  &seed,
	})
	require.NoError(t, err)

	require.Len(t, output.AllTrainers, 1)
	score := output.AllTrainers[0].Match.Score
	assert.GreaterOrEqual(t, score, 50)
	assert.Less(t, score, 70)
}
