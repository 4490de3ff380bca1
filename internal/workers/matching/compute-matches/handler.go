// internal/workers/matching/compute-matches/handler.go
package computematches

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/metrics"
	"fitmatch-workers/internal/matching"
	"fitmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "compute-matches"
)

var (
	ErrMatchComputeFailed = errors.New("MATCH_COMPUTE_FAILED")
	ErrInvalidPreferences = errors.New("INVALID_PREFERENCES")
	ErrConfigLoadFailed   = errors.New("CONFIG_LOAD_FAILED")
	ErrMappingLoadFailed  = errors.New("MAPPING_LOAD_FAILED")
)

// ConfigProvider hands out the live matching algorithm config.
type ConfigProvider interface {
	GetActiveConfig(ctx context.Context) (*models.MatchingAlgorithmConfig, error)
	GetLiveWeights(ctx context.Context) (map[models.WeightCategory]models.WeightConfig, error)
}

// MappingProvider hands out the active goal-to-specialty mapping table.
type MappingProvider interface {
	GetActiveMappings(ctx context.Context) (models.GoalMappings, error)
}

type Handler struct {
	config   *Config
	configs  ConfigProvider
	mappings MappingProvider
	logger   logger.Logger
}

func NewHandler(config *Config, configs ConfigProvider, mappings MappingProvider, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		configs:  configs,
		mappings: mappings,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, h.mapErrorToCode(err)).Inc()
		h.failJob(client, job, h.mapErrorToCode(err), err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPreferences, err)
	}

	trainers := input.Trainers
	if h.config.MaxPoolSize > 0 && len(trainers) > h.config.MaxPoolSize {
		h.logger.Warn("trainer pool truncated", map[string]interface{}{
			"poolSize": len(trainers),
			"maxSize":  h.config.MaxPoolSize,
		})
		trainers = trainers[:h.config.MaxPoolSize]
	}

	cfg, err := h.configs.GetActiveConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoadFailed, err)
	}
	weights, err := h.configs.GetLiveWeights(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoadFailed, err)
	}
	goalMappings, err := h.mappings.GetActiveMappings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMappingLoadFailed, err)
	}

	rng := matching.NewTimeRand()
	if input.RandomSeed != nil {
		rng = matching.NewSeededRand(*input.RandomSeed)
	}

	engine := matching.NewEngine(cfg, weights, goalMappings, rng)
	result := engine.ComputeMatches(trainers, &input.Preferences)

	h.recordMetrics(&result)

	h.logger.Info("matches computed", map[string]interface{}{
		"clientId":      input.ClientID,
		"poolSize":      len(trainers),
		"matched":       len(result.MatchedTrainers),
		"excluded":      len(result.ExcludedTrainers),
		"topMatches":    len(result.TopMatches),
		"hasMatches":    result.HasMatches,
	})

	return &Output{
		MatchedTrainers:  result.MatchedTrainers,
		ExcludedTrainers: result.ExcludedTrainers,
		ExclusionSummary: result.ExclusionSummary,
		HasMatches:       result.HasMatches,
		TopMatches:       result.TopMatches,
		GoodMatches:      result.GoodMatches,
		AllTrainers:      result.AllTrainers,
	}, nil
}

// validateInput rejects jobs that could never produce a meaningful result.
// An empty preference set is allowed: the engine falls back to randomized
// baseline scores for it.
func validateInput(input *Input) error {
	if input == nil {
		return errors.New("input cannot be nil")
	}
	if input.Trainers == nil {
		return errors.New("trainers is required")
	}
	if input.Preferences.Survey != nil {
		s := input.Preferences.Survey
		if s.BudgetRangeMin > s.BudgetRangeMax && s.BudgetRangeMax > 0 {
			return fmt.Errorf("budget range inverted: min %.2f > max %.2f", s.BudgetRangeMin, s.BudgetRangeMax)
		}
	}
	return nil
}

func (h *Handler) recordMetrics(result *models.EnhancedMatchingResult) {
	for _, st := range result.AllTrainers {
		metrics.MatchScores.Observe(float64(st.Match.Score))
	}
	summary := result.ExclusionSummary
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionGender)).Add(float64(summary.Gender))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionFormat)).Add(float64(summary.Format))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionBudget)).Add(float64(summary.Budget))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionAvailability)).Add(float64(summary.Availability))
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) mapErrorToCode(err error) string {
	if errors.Is(err, ErrInvalidPreferences) {
		return "INVALID_PREFERENCES"
	} else if errors.Is(err, ErrConfigLoadFailed) {
		return "CONFIG_LOAD_FAILED"
	} else if errors.Is(err, ErrMappingLoadFailed) {
		return "MAPPING_LOAD_FAILED"
	}
	return "MATCH_COMPUTE_FAILED"
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
