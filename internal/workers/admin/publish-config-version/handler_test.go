// internal/workers/admin/publish-config-version/handler_test.go
package publishconfigversion

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublishStore struct {
	version *models.ConfigVersion
	err     error
}

func (f *fakePublishStore) Publish(ctx context.Context, id string) (*models.ConfigVersion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.version, nil
}

type fakeEmail struct {
	sent int
	err  error
}

func (f *fakeEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent++
	return &ses.SendEmailOutput{}, nil
}

type fakeSMS struct {
	sent int
	err  error
}

func (f *fakeSMS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent++
	return &sns.PublishOutput{}, nil
}

func publishedVersion() *models.ConfigVersion {
	now := time.Now()
	return &models.ConfigVersion{
		ID:          "v-live",
		Version:     3,
		Status:      models.ConfigStatusLive,
		Config:      configstore.DefaultConfig(),
		PublishedAt: &now,
	}
}

func testConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		SenderEmail: "noreply@fitmatch.io",
		AdminEmail:  "admin@fitmatch.io",
		AdminPhone:  "+15550001111",
	}
}

func TestExecute_PublishAndNotify(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	h := NewHandler(testConfig(), &fakePublishStore{version: publishedVersion()}, email, sms, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{VersionID: "v-live", Author: "admin"})
	require.NoError(t, err)

	assert.Equal(t, "live", output.Status)
	assert.Equal(t, 3, output.Version)
	assert.True(t, output.AdminNotified)
	assert.NotEmpty(t, output.PublishedAt)
	assert.Equal(t, 1, email.sent)
	assert.Equal(t, 1, sms.sent)
}

func TestExecute_NotificationFailureDoesNotFailJob(t *testing.T) {
	email := &fakeEmail{err: errors.New("ses throttled")}
	sms := &fakeSMS{err: errors.New("sns unavailable")}
	h := NewHandler(testConfig(), &fakePublishStore{version: publishedVersion()}, email, sms, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{VersionID: "v-live"})
	require.NoError(t, err)

	assert.Equal(t, "live", output.Status)
	assert.False(t, output.AdminNotified)
}

func TestExecute_NonDraftRejected(t *testing.T) {
	h := NewHandler(testConfig(), &fakePublishStore{err: configstore.ErrNotDraft}, nil, nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{VersionID: "v-live"})
	assert.ErrorIs(t, err, configstore.ErrNotDraft)
	assert.Equal(t, "CONFIG_NOT_DRAFT", h.mapErrorToCode(err))
}

func TestExecute_MissingVersionID(t *testing.T) {
	h := NewHandler(testConfig(), &fakePublishStore{}, nil, nil, logger.NewNoOpLogger())

	_, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrPublishFailed)
	assert.Equal(t, "CONFIG_PUBLISH_FAILED", h.mapErrorToCode(err))
}

func TestExecute_NoNotifierConfigured(t *testing.T) {
	cfg := testConfig()
	cfg.AdminEmail = ""
	cfg.AdminPhone = ""
	h := NewHandler(cfg, &fakePublishStore{version: publishedVersion()}, &fakeEmail{}, &fakeSMS{}, logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{VersionID: "v-live"})
	require.NoError(t, err)
	assert.False(t, output.AdminNotified)
}
