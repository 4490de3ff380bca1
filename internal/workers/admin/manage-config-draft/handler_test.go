// internal/workers/admin/manage-config-draft/handler_test.go
package manageconfigdraft

import (
	"context"
	"testing"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	versions map[string]*models.ConfigVersion
	nextVer  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{versions: map[string]*models.ConfigVersion{}}
}

func (f *fakeStore) CreateDraft(ctx context.Context, cfg models.MatchingAlgorithmConfig, author string) (*models.ConfigVersion, error) {
	f.nextVer++
	id := "v-" + string(rune('0'+f.nextVer))
	version := &models.ConfigVersion{
		ID:        id,
		Version:   f.nextVer,
		Status:    models.ConfigStatusDraft,
		Config:    cfg,
		CreatedBy: author,
	}
	f.versions[id] = version
	return version, nil
}

func (f *fakeStore) CloneFromVersion(ctx context.Context, sourceID, author string) (*models.ConfigVersion, error) {
	source, ok := f.versions[sourceID]
	if !ok {
		return nil, configstore.ErrNotFound
	}
	return f.CreateDraft(ctx, source.Config, author)
}

func (f *fakeStore) UpdateDraft(ctx context.Context, id string, cfg models.MatchingAlgorithmConfig) error {
	version, ok := f.versions[id]
	if !ok {
		return configstore.ErrNotFound
	}
	if version.Status != models.ConfigStatusDraft {
		return configstore.ErrNotDraft
	}
	version.Config = cfg
	return nil
}

func (f *fakeStore) DeleteDraft(ctx context.Context, id string) error {
	version, ok := f.versions[id]
	if !ok {
		return configstore.ErrNotFound
	}
	if version.Status != models.ConfigStatusDraft {
		return configstore.ErrNotDraft
	}
	delete(f.versions, id)
	return nil
}

func (f *fakeStore) GetVersion(ctx context.Context, id string) (*models.ConfigVersion, error) {
	version, ok := f.versions[id]
	if !ok {
		return nil, configstore.ErrNotFound
	}
	return version, nil
}

func newTestHandler() (*Handler, *fakeStore) {
	store := newFakeStore()
	return NewHandler(&Config{Timeout: 10 * time.Second}, store, logger.NewNoOpLogger()), store
}

func TestExecute_CreateWithDefaults(t *testing.T) {
	h, store := newTestHandler()

	output, err := h.Execute(context.Background(), &Input{Action: "create", Author: "admin"})
	require.NoError(t, err)

	assert.Equal(t, "draft", output.Status)
	assert.Equal(t, 1, output.Version)

	saved := store.versions[output.VersionID]
	require.NotNil(t, saved)
	assert.Equal(t, configstore.DefaultConfig().Thresholds, saved.Config.Thresholds)
}

func TestExecute_CloneCopiesPayload(t *testing.T) {
	h, store := newTestHandler()

	source, err := store.CreateDraft(context.Background(), configstore.DefaultConfig(), "admin")
	require.NoError(t, err)
	source.Status = models.ConfigStatusLive

	output, err := h.Execute(context.Background(), &Input{
		Action:          "clone",
		SourceVersionID: source.ID,
		Author:          "admin",
	})
	require.NoError(t, err)

	assert.Equal(t, "draft", output.Status)
	assert.NotEqual(t, source.ID, output.VersionID)
	assert.Equal(t, source.Config, store.versions[output.VersionID].Config)
}

func TestExecute_UpdateRejectsOutOfBoundsWeight(t *testing.T) {
	h, store := newTestHandler()

	draft, err := store.CreateDraft(context.Background(), configstore.DefaultConfig(), "admin")
	require.NoError(t, err)

	cfg := configstore.DefaultConfig()
	cfg.Weights[models.CategoryGoalsSpecialties] = models.WeightConfig{Value: 60, Min: 10, Max: 40}

	_, err = h.Execute(context.Background(), &Input{
		Action:    "update",
		VersionID: draft.ID,
		Config:    &cfg,
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, "INVALID_CONFIG", h.mapErrorToCode(err))
}

func TestExecute_UpdateRejectsUnorderedThresholds(t *testing.T) {
	h, store := newTestHandler()

	draft, err := store.CreateDraft(context.Background(), configstore.DefaultConfig(), "admin")
	require.NoError(t, err)

	cfg := configstore.DefaultConfig()
	cfg.Thresholds = models.Thresholds{MinScoreToDisplay: 50, GoodMatch: 80, TopMatch: 70}

	_, err = h.Execute(context.Background(), &Input{
		Action:    "update",
		VersionID: draft.ID,
		Config:    &cfg,
	})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExecute_UpdateNonDraftRejected(t *testing.T) {
	h, store := newTestHandler()

	draft, err := store.CreateDraft(context.Background(), configstore.DefaultConfig(), "admin")
	require.NoError(t, err)
	draft.Status = models.ConfigStatusLive

	cfg := configstore.DefaultConfig()
	_, err = h.Execute(context.Background(), &Input{
		Action:    "update",
		VersionID: draft.ID,
		Config:    &cfg,
	})
	assert.ErrorIs(t, err, configstore.ErrNotDraft)
	assert.Equal(t, "CONFIG_NOT_DRAFT", h.mapErrorToCode(err))
}

func TestExecute_DeleteDraft(t *testing.T) {
	h, store := newTestHandler()

	draft, err := store.CreateDraft(context.Background(), configstore.DefaultConfig(), "admin")
	require.NoError(t, err)

	output, err := h.Execute(context.Background(), &Input{
		Action:    "delete",
		VersionID: draft.ID,
	})
	require.NoError(t, err)

	assert.True(t, output.Deleted)
	assert.NotContains(t, store.versions, draft.ID)
}

func TestExecute_UnknownAction(t *testing.T) {
	h, _ := newTestHandler()

	_, err := h.Execute(context.Background(), &Input{Action: "promote"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, "UNKNOWN_ACTION", h.mapErrorToCode(err))
}
