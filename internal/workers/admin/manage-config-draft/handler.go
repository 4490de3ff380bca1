// internal/workers/admin/manage-config-draft/handler.go
package manageconfigdraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/metrics"
	"fitmatch-workers/internal/common/validation"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "manage-config-draft"
)

var (
	ErrUnknownAction = errors.New("UNKNOWN_ACTION")
	ErrInvalidConfig = errors.New("INVALID_CONFIG")
)

// inputSchema guards the raw job variables before they are bound to Input.
var inputSchema = validation.JSONSchema{
	Type: "object",
	Properties: map[string]validation.Property{
		"action":          {Type: "string", Enum: []string{"create", "clone", "update", "delete"}},
		"versionId":       {Type: "string"},
		"sourceVersionId": {Type: "string"},
		"config":          {Type: "object"},
		"author":          {Type: "string"},
	},
	Required:             []string{"action"},
	AdditionalProperties: true,
}

// DraftStore is the subset of the config store the draft actions need.
type DraftStore interface {
	CreateDraft(ctx context.Context, cfg models.MatchingAlgorithmConfig, author string) (*models.ConfigVersion, error)
	CloneFromVersion(ctx context.Context, sourceID, author string) (*models.ConfigVersion, error)
	UpdateDraft(ctx context.Context, id string, cfg models.MatchingAlgorithmConfig) error
	DeleteDraft(ctx context.Context, id string) error
	GetVersion(ctx context.Context, id string) (*models.ConfigVersion, error)
}

type Handler struct {
	config *Config
	store  DraftStore
	logger logger.Logger
}

func NewHandler(config *Config, store DraftStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	if result := validation.ValidateInput(raw, inputSchema); !result.Valid {
		first := result.Errors[0]
		h.failJob(client, job, "INVALID_CONFIG", fmt.Sprintf("%s: %s", first.Field, first.Message))
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, h.mapErrorToCode(err), err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	switch input.Action {
	case "create":
		return h.create(ctx, input)
	case "clone":
		return h.clone(ctx, input)
	case "update":
		return h.update(ctx, input)
	case "delete":
		return h.delete(ctx, input)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, input.Action)
}

func (h *Handler) create(ctx context.Context, input *Input) (*Output, error) {
	cfg := configstore.DefaultConfig()
	if input.Config != nil {
		if err := validateDraftConfig(input.Config); err != nil {
			return nil, err
		}
		cfg = *input.Config
	}

	version, err := h.store.CreateDraft(ctx, cfg, input.Author)
	if err != nil {
		return nil, err
	}

	h.logger.Info("draft created", map[string]interface{}{
		"versionId": version.ID,
		"version":   version.Version,
	})
	return versionOutput(version), nil
}

func (h *Handler) clone(ctx context.Context, input *Input) (*Output, error) {
	if input.SourceVersionID == "" {
		return nil, fmt.Errorf("%w: sourceVersionId is required for clone", ErrInvalidConfig)
	}

	version, err := h.store.CloneFromVersion(ctx, input.SourceVersionID, input.Author)
	if err != nil {
		return nil, err
	}
	return versionOutput(version), nil
}

func (h *Handler) update(ctx context.Context, input *Input) (*Output, error) {
	if input.VersionID == "" || input.Config == nil {
		return nil, fmt.Errorf("%w: versionId and config are required for update", ErrInvalidConfig)
	}
	if err := validateDraftConfig(input.Config); err != nil {
		return nil, err
	}

	if err := h.store.UpdateDraft(ctx, input.VersionID, *input.Config); err != nil {
		return nil, err
	}

	version, err := h.store.GetVersion(ctx, input.VersionID)
	if err != nil {
		return nil, err
	}
	return versionOutput(version), nil
}

func (h *Handler) delete(ctx context.Context, input *Input) (*Output, error) {
	if input.VersionID == "" {
		return nil, fmt.Errorf("%w: versionId is required for delete", ErrInvalidConfig)
	}
	if err := h.store.DeleteDraft(ctx, input.VersionID); err != nil {
		return nil, err
	}
	return &Output{VersionID: input.VersionID, Deleted: true}, nil
}

// validateDraftConfig rejects payloads an admin UI should never send: weight
// values outside their own bounds and threshold cutoffs out of order.
func validateDraftConfig(cfg *models.MatchingAlgorithmConfig) error {
	for category, weight := range cfg.Weights {
		if weight.Min > weight.Max {
			return fmt.Errorf("%w: %s bounds inverted (%.0f > %.0f)", ErrInvalidConfig, category, weight.Min, weight.Max)
		}
		if weight.Value < weight.Min || weight.Value > weight.Max {
			return fmt.Errorf("%w: %s value %.0f outside [%.0f, %.0f]", ErrInvalidConfig, category, weight.Value, weight.Min, weight.Max)
		}
	}

	th := cfg.Thresholds
	if th.MinScoreToDisplay > th.GoodMatch || th.GoodMatch > th.TopMatch {
		return fmt.Errorf("%w: thresholds must be ordered display <= good <= top", ErrInvalidConfig)
	}

	if cfg.Budget.SoftTolerancePercent < 0 || cfg.Budget.HardExclusionPercent < 0 {
		return fmt.Errorf("%w: budget percentages cannot be negative", ErrInvalidConfig)
	}

	return nil
}

func versionOutput(version *models.ConfigVersion) *Output {
	return &Output{
		VersionID: version.ID,
		Version:   version.Version,
		Status:    string(version.Status),
	}
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
	switch {
	case errors.Is(err, ErrUnknownAction):
		return "UNKNOWN_ACTION"
	case errors.Is(err, ErrInvalidConfig):
		return "INVALID_CONFIG"
	case errors.Is(err, configstore.ErrNotDraft):
		return "CONFIG_NOT_DRAFT"
	case errors.Is(err, configstore.ErrNotFound):
		return "CONFIG_NOT_FOUND"
	}
	return "CONFIG_UPDATE_FAILED"
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
