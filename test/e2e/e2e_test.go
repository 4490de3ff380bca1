// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fitmatch-workers/internal/common/config"
	"fitmatch-workers/internal/common/database"
	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/goalmapping"
	"fitmatch-workers/internal/models"

	applyhardexclusions "fitmatch-workers/internal/workers/matching/apply-hard-exclusions"
	computematches "fitmatch-workers/internal/workers/matching/compute-matches"
	manageconfigdraft "fitmatch-workers/internal/workers/admin/manage-config-draft"
	publishconfigversion "fitmatch-workers/internal/workers/admin/publish-config-version"
)

var (
	zeebeClient zbc.Client
	zapLog      *zap.Logger
)

func TestMain(m *testing.M) {
	var err error

	// Zeebe is optional for these tests; handlers are exercised through
	// Execute, not through live job activation.
	zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         "localhost:26500",
		UsePlaintextConnection: true,
	})
	if err != nil {
		fmt.Printf("Zeebe unavailable, running without broker: %v\n", err)
	}

	zapLog, _ = zap.NewProduction()

	code := m.Run()

	if zeebeClient != nil {
		zeebeClient.Close()
	}
	os.Exit(code)
}

// requireInfra connects to Postgres and Redis, skipping the test when either
// is unreachable so the suite stays runnable on a dev machine without the
// full docker-compose stack.
func requireInfra(t *testing.T, cfg *config.Config) (*database.PostgresClient, *database.RedisClient) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil || pg.Ping(ctx) != nil {
		t.Skipf("postgres unavailable: %v", err)
	}

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil || redisClient.Ping(ctx) != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	return pg, redisClient
}

func createConfigTables(t *testing.T, pg *database.PostgresClient) {
	t.Helper()

	ctx := context.Background()
	_, err := pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS matching_algorithm_configs (
			id UUID PRIMARY KEY,
			version INTEGER NOT NULL,
			status VARCHAR(16) NOT NULL,
			config JSONB NOT NULL,
			created_by VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			published_at TIMESTAMPTZ
		)`)
	require.NoError(t, err)
}

func sampleTrainers() []models.Trainer {
	return []models.Trainer{
		{
			ID:              "e2e-t1",
			Name:            "Avery",
			Specialties:     []string{"Weight Loss Coaching"},
			DeliveryFormats: []string{"online"},
			HourlyRate:      80,
			ExperienceYears: 6,
			Rating:          4.8,
		},
		{
			ID:              "e2e-t2",
			Name:            "Sam",
			Specialties:     []string{"Powerlifting"},
			DeliveryFormats: []string{"in-person"},
			HourlyRate:      400,
			ExperienceYears: 10,
			Rating:          4.9,
		},
	}
}

func samplePreferences() *models.ClientPreferences {
	return &models.ClientPreferences{
		Survey: &models.SurveyData{
			PrimaryGoals:               []string{"weight_loss"},
			TrainingLocationPreference: "online",
			BudgetRangeMin:             50,
			BudgetRangeMax:             100,
		},
	}
}

func TestConfigLifecycleE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	pg, redisClient := requireInfra(t, cfg)
	defer pg.Close()
	defer redisClient.Close()

	createConfigTables(t, pg)

	log := logger.NewTestLogger(t)
	store := configstore.New(pg.GetDB(), redisClient.GetClient(), time.Minute, log)

	ctx := context.Background()

	// Draft -> publish through the admin workers, then read the live config
	// back the way the matching workers do.
	draftHandler := manageconfigdraft.NewHandler(manageconfigdraft.LoadConfig(), store, log)
	draftOut, err := draftHandler.Execute(ctx, &manageconfigdraft.Input{
		Action: "create",
		Author: "e2e",
	})
	require.NoError(t, err)
	require.NotEmpty(t, draftOut.VersionID)
	assert.Equal(t, "draft", draftOut.Status)

	publishHandler := publishconfigversion.NewHandler(
		publishconfigversion.LoadConfig(), store, nil, nil, log)
	publishOut, err := publishHandler.Execute(ctx, &publishconfigversion.Input{
		VersionID: draftOut.VersionID,
		Author:    "e2e",
	})
	require.NoError(t, err)
	assert.Equal(t, "live", publishOut.Status)

	live, err := store.GetActiveConfig(ctx)
	require.NoError(t, err)
	assert.True(t, live.FeatureFlags.EnableHardExclusions)

	// Re-publishing the same version must fail: it is live now, not draft.
	_, err = publishHandler.Execute(ctx, &publishconfigversion.Input{VersionID: draftOut.VersionID})
	assert.ErrorIs(t, err, configstore.ErrNotDraft)
}

func TestMatchingPipelineE2E(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	pg, redisClient := requireInfra(t, cfg)
	defer pg.Close()
	defer redisClient.Close()

	createConfigTables(t, pg)

	log := logger.NewTestLogger(t)
	store := configstore.New(pg.GetDB(), redisClient.GetClient(), time.Minute, log)
	mappings := goalmapping.New(pg.GetDB(), redisClient.GetClient(), time.Minute, log)

	ctx := context.Background()
	seed := int64(42)

	// Exclusion stage: the in-person, over-budget trainer drops out.
	exclusionHandler := applyhardexclusions.NewHandler(
		applyhardexclusions.LoadConfig(), store, log)
	exclusionOut, err := exclusionHandler.Execute(ctx, &applyhardexclusions.Input{
		Trainers:    sampleTrainers(),
		Preferences: *samplePreferences(),
	})
	require.NoError(t, err)
	require.Len(t, exclusionOut.IncludedTrainers, 1)
	assert.Equal(t, "e2e-t1", exclusionOut.IncludedTrainers[0].ID)

	// Full pipeline in one worker.
	matchHandler := computematches.NewHandler(&computematches.Config{
		Timeout:     30 * time.Second,
		MaxPoolSize: cfg.Matching.MaxPoolSize,
	}, store, mappings, log)

	matchOut, err := matchHandler.Execute(ctx, &computematches.Input{
		ClientID:    "e2e-client",
		Trainers:    sampleTrainers(),
		Preferences: *samplePreferences(),
		RandomSeed:  &seed,
	})
	require.NoError(t, err)

	assert.True(t, matchOut.HasMatches)
	require.Len(t, matchOut.AllTrainers, 1)
	assert.GreaterOrEqual(t, matchOut.AllTrainers[0].Match.Score, 45)
	assert.LessOrEqual(t, matchOut.AllTrainers[0].Match.Score, 100)
	require.Len(t, matchOut.ExcludedTrainers, 1)
	assert.Equal(t, "e2e-t2", matchOut.ExcludedTrainers[0].Trainer.ID)
}

func TestZeebeTopology(t *testing.T) {
	if zeebeClient == nil {
		t.Skip("zeebe broker unavailable")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topology, err := zeebeClient.NewTopologyCommand().Send(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, topology.Brokers)
	zapLog.Info("zeebe topology", zap.Int("brokers", len(topology.Brokers)))
}
