// internal/workers/admin/publish-config-version/handler.go
package publishconfigversion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/metrics"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "publish-config-version"
)

var ErrPublishFailed = errors.New("CONFIG_PUBLISH_FAILED")

// PublishStore promotes one draft config version to live.
type PublishStore interface {
	Publish(ctx context.Context, id string) (*models.ConfigVersion, error)
}

// EmailSender matches the common SES wrapper.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender matches the common SNS wrapper.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config *Config
	store  PublishStore
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, store PublishStore, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, h.mapErrorToCode(err), err.Error())
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

// execute publishes the version and then notifies the admins. Notification is
// best-effort: the publish has already committed, so a failed email or SMS
// must never fail the job.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.VersionID == "" {
		return nil, fmt.Errorf("%w: versionId is required", ErrPublishFailed)
	}

	version, err := h.store.Publish(ctx, input.VersionID)
	if err != nil {
		if errors.Is(err, configstore.ErrNotDraft) || errors.Is(err, configstore.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	metrics.ConfigPublishes.Inc()

	notified := h.notifyAdmins(ctx, version, input.Author)

	output := &Output{
		VersionID:     version.ID,
		Version:       version.Version,
		Status:        string(version.Status),
		AdminNotified: notified,
	}
	if version.PublishedAt != nil {
		output.PublishedAt = version.PublishedAt.Format(time.RFC3339)
	}

	h.logger.Info("config version published", map[string]interface{}{
		"versionId": version.ID,
		"version":   version.Version,
		"notified":  notified,
	})

	return output, nil
}

func (h *Handler) notifyAdmins(ctx context.Context, version *models.ConfigVersion, author string) bool {
	notified := false

	if h.email != nil && h.config.AdminEmail != "" {
		subject := fmt.Sprintf("Matching config v%d is now live", version.Version)
		body := fmt.Sprintf(
			"Config version %d (%s) was published by %s.\n\nAll new match computations now use this version.",
			version.Version, version.ID, author)

		_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
			Source:      aws.String(h.config.SenderEmail),
			Destination: &sestypes.Destination{ToAddresses: []string{h.config.AdminEmail}},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
		})
		if err != nil {
			h.logger.Warn("admin email notification failed", map[string]interface{}{
				"versionId": version.ID,
				"error":     err,
			})
		} else {
			notified = true
		}
	}

	if h.sms != nil && h.config.AdminPhone != "" {
		_, err := h.sms.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(h.config.AdminPhone),
			Message:     aws.String(fmt.Sprintf("Matching config v%d published", version.Version)),
		})
		if err != nil {
			h.logger.Warn("admin sms notification failed", map[string]interface{}{
				"versionId": version.ID,
				"error":     err,
			})
		} else {
			notified = true
		}
	}

	return notified
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
	case errors.Is(err, configstore.ErrNotDraft):
		return "CONFIG_NOT_DRAFT"
	case errors.Is(err, configstore.ErrNotFound):
		return "CONFIG_NOT_FOUND"
	}
	return "CONFIG_PUBLISH_FAILED"
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
