// internal/configstore/store.go
package configstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	activeConfigCacheKey = "matchconfig:active"
	liveWeightsCacheKey  = "matchconfig:weights"
)

var (
	ErrNotFound = errors.New("config version not found")
	ErrNotDraft = errors.New("config version is not a draft")
	ErrNoLive   = errors.New("no live config version")
)

// Store manages the versioned MatchingAlgorithmConfig aggregate.
// Lifecycle contract: draft -> live -> archived; exactly one live version at
// a time; only drafts may be mutated or deleted; publish atomically archives
// the prior live version.
type Store struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func New(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Store {
	return &Store{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "configstore"}),
	}
}

// CreateDraft inserts a new draft version with the next version number.
func (s *Store) CreateDraft(ctx context.Context, cfg models.MatchingAlgorithmConfig, author string) (*models.ConfigVersion, error) {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	version := &models.ConfigVersion{
		ID:        uuid.New().String(),
		Status:    models.ConfigStatusDraft,
		Config:    cfg,
		CreatedBy: author,
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO matching_algorithm_configs (id, version, status, config, created_by, created_at, updated_at)
		VALUES ($1, (SELECT COALESCE(MAX(version), 0) + 1 FROM matching_algorithm_configs), $2, $3, $4, NOW(), NOW())
		RETURNING version, created_at, updated_at`,
		version.ID, string(models.ConfigStatusDraft), payload, author)

	if err := row.Scan(&version.Version, &version.CreatedAt, &version.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}

	s.logger.Info("draft created", map[string]interface{}{
		"versionId": version.ID,
		"version":   version.Version,
		"author":    author,
	})

	return version, nil
}

// CloneFromVersion copies any version's payload into a new draft.
func (s *Store) CloneFromVersion(ctx context.Context, sourceID, author string) (*models.ConfigVersion, error) {
	source, err := s.GetVersion(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	return s.CreateDraft(ctx, source.Config, author)
}

// UpdateDraft replaces a draft's payload. Rejected unless the target is a draft.
func (s *Store) UpdateDraft(ctx context.Context, id string, cfg models.MatchingAlgorithmConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE matching_algorithm_configs
		SET config = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`,
		payload, id, string(models.ConfigStatusDraft))
	if err != nil {
		return fmt.Errorf("update draft: %w", err)
	}

	return s.requireDraftAffected(ctx, result, id)
}

// Publish promotes a draft to live in a single transaction, archiving the
// prior live version. After commit exactly one live version exists.
func (s *Store) Publish(ctx context.Context, id string) (*models.ConfigVersion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin publish tx: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.QueryRowContext(ctx,
		`SELECT status FROM matching_algorithm_configs WHERE id = $1 FOR UPDATE`, id,
	).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock version: %w", err)
	}
	if status != string(models.ConfigStatusDraft) {
		return nil, ErrNotDraft
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE matching_algorithm_configs
		SET status = $1, updated_at = NOW()
		WHERE status = $2`,
		string(models.ConfigStatusArchived), string(models.ConfigStatusLive)); err != nil {
		return nil, fmt.Errorf("archive live version: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE matching_algorithm_configs
		SET status = $1, published_at = NOW(), updated_at = NOW()
		WHERE id = $2`,
		string(models.ConfigStatusLive), id); err != nil {
		return nil, fmt.Errorf("promote draft: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit publish: %w", err)
	}

	s.invalidateCache(ctx)

	published, err := s.GetVersion(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("config version published", map[string]interface{}{
		"versionId": published.ID,
		"version":   published.Version,
	})

	return published, nil
}

// DeleteDraft removes a draft. Rejected unless the target is a draft.
func (s *Store) DeleteDraft(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM matching_algorithm_configs
		WHERE id = $1 AND status = $2`,
		id, string(models.ConfigStatusDraft))
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}

	return s.requireDraftAffected(ctx, result, id)
}

// GetVersion loads one version by id.
func (s *Store) GetVersion(ctx context.Context, id string) (*models.ConfigVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, version, status, config, created_by, created_at, updated_at, published_at
		FROM matching_algorithm_configs WHERE id = $1`, id)
	return scanVersion(row)
}

// GetActiveConfig returns the live config, Redis-cached with a short TTL.
// Falls back to built-in defaults when no live version exists.
func (s *Store) GetActiveConfig(ctx context.Context) (*models.MatchingAlgorithmConfig, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, activeConfigCacheKey).Result(); err == nil {
			var cfg models.MatchingAlgorithmConfig
			if err := json.Unmarshal([]byte(val), &cfg); err == nil {
				return &cfg, nil
			}
		}
	}

	version, err := s.getLiveVersion(ctx)
	if err != nil {
		if errors.Is(err, ErrNoLive) {
			cfg := DefaultConfig()
			return &cfg, nil
		}
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(version.Config); err == nil {
			s.redis.Set(ctx, activeConfigCacheKey, data, s.cacheTTL)
		}
	}

	return &version.Config, nil
}

// GetLiveWeights returns the live version's weights, or the documented
// default weight set when no live version exists.
func (s *Store) GetLiveWeights(ctx context.Context) (map[models.WeightCategory]models.WeightConfig, error) {
	cfg, err := s.GetActiveConfig(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfg.Weights) == 0 {
		return DefaultWeights(), nil
	}
	return cfg.Weights, nil
}

// ListVersions returns all versions, newest first.
func (s *Store) ListVersions(ctx context.Context) ([]models.ConfigVersion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, status, config, created_by, created_at, updated_at, published_at
		FROM matching_algorithm_configs ORDER BY version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.ConfigVersion
	for rows.Next() {
		version, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *version)
	}
	return versions, rows.Err()
}

func (s *Store) getLiveVersion(ctx context.Context) (*models.ConfigVersion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, version, status, config, created_by, created_at, updated_at, published_at
		FROM matching_algorithm_configs WHERE status = $1`,
		string(models.ConfigStatusLive))

	version, err := scanVersion(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoLive
	}
	return version, err
}

// requireDraftAffected distinguishes "not found" from "exists but not draft"
// after a status-guarded write matched zero rows.
func (s *Store) requireDraftAffected(ctx context.Context, result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := s.GetVersion(ctx, id); err != nil {
		return err
	}
	return ErrNotDraft
}

func (s *Store) invalidateCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, activeConfigCacheKey, liveWeightsCacheKey).Err(); err != nil {
		s.logger.Warn("cache invalidation failed", map[string]interface{}{"error": err})
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVersion(row rowScanner) (*models.ConfigVersion, error) {
	var version models.ConfigVersion
	var status string
	var payload []byte
	var publishedAt sql.NullTime

	err := row.Scan(&version.ID, &version.Version, &status, &payload,
		&version.CreatedBy, &version.CreatedAt, &version.UpdatedAt, &publishedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan version: %w", err)
	}

	version.Status = models.ConfigStatus(status)
	if err := json.Unmarshal(payload, &version.Config); err != nil {
		return nil, fmt.Errorf("unmarshal config payload: %w", err)
	}
	if publishedAt.Valid {
		version.PublishedAt = &publishedAt.Time
	}

	return &version, nil
}
