// internal/workers/matching/calculate-match-score/handler.go
package calculatematchscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/metrics"
	"fitmatch-workers/internal/matching"
	"fitmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-match-score"
)

var (
	ErrScoreFailed      = errors.New("MATCH_COMPUTE_FAILED")
	ErrConfigLoadFailed = errors.New("CONFIG_LOAD_FAILED")
	ErrMappingLoadFailed = errors.New("MAPPING_LOAD_FAILED")
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
		errorCode := "MATCH_COMPUTE_FAILED"
		if errors.Is(err, ErrConfigLoadFailed) {
			errorCode = "CONFIG_LOAD_FAILED"
		} else if errors.Is(err, ErrMappingLoadFailed) {
			errorCode = "MAPPING_LOAD_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.MatchScores.Observe(float64(output.Score))
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.Trainer.ID == "" {
		return nil, fmt.Errorf("%w: trainer id is required", ErrScoreFailed)
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

	scorer := matching.NewScoringEngine(cfg, weights, goalMappings, rng)
	match := scorer.Score(&input.Trainer, &input.Preferences)

	h.logger.Info("match score calculated", map[string]interface{}{
		"trainerId": input.Trainer.ID,
		"score":     match.Score,
		"reasons":   len(match.Reasons),
	})

	return &Output{
		Score:                   match.Score,
		MatchReasons:            match.Reasons,
		ScoreBreakdown:          match.Breakdown,
		CompatibilityPercentage: match.CompatibilityPercentage,
	}, nil
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
