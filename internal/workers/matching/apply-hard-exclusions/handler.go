// internal/workers/matching/apply-hard-exclusions/handler.go
package applyhardexclusions

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
	TaskType = "apply-hard-exclusions"
)

var (
	ErrExclusionFailed  = errors.New("EXCLUSION_FAILED")
	ErrConfigLoadFailed = errors.New("CONFIG_LOAD_FAILED")
)

// ConfigProvider hands out the live matching algorithm config.
type ConfigProvider interface {
	GetActiveConfig(ctx context.Context) (*models.MatchingAlgorithmConfig, error)
}

type Handler struct {
	config  *Config
	configs ConfigProvider
	logger  logger.Logger
}

func NewHandler(config *Config, configs ConfigProvider, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		configs: configs,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		errorCode := "EXCLUSION_FAILED"
		if errors.Is(err, ErrConfigLoadFailed) {
			errorCode = "CONFIG_LOAD_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	cfg, err := h.configs.GetActiveConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoadFailed, err)
	}

	result := matching.ApplyHardExclusions(input.Trainers, &input.Preferences, cfg)

	summary := result.Summary
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionGender)).Add(float64(summary.Gender))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionFormat)).Add(float64(summary.Format))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionBudget)).Add(float64(summary.Budget))
	metrics.TrainersExcluded.WithLabelValues(string(models.ExclusionAvailability)).Add(float64(summary.Availability))

	h.logger.Info("exclusions applied", map[string]interface{}{
		"poolSize": len(input.Trainers),
		"included": len(result.Included),
		"excluded": summary.Total,
	})

	return &Output{
		IncludedTrainers: result.Included,
		ExcludedTrainers: result.Excluded,
		ExclusionSummary: summary,
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
