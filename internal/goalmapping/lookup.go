// internal/goalmapping/lookup.go
package goalmapping

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const mappingsCacheKey = "goalmapping:active"

// Lookup loads the active goal-to-specialty mapping table from Postgres,
// grouped by goal key, with a Redis cache in front. Inactive goals and
// inactive mappings never reach the scoring engine.
type Lookup struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func New(db *sql.DB, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Lookup {
	return &Lookup{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"component": "goalmapping"}),
	}
}

// GetActiveMappings returns all active mappings grouped by goal key.
func (l *Lookup) GetActiveMappings(ctx context.Context) (models.GoalMappings, error) {
	if cached := l.fromCache(ctx); cached != nil {
		return cached, nil
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT g.goal_key, s.name, m.weight, m.mapping_type
		FROM goal_specialty_mappings m
		JOIN client_goals g ON g.id = m.goal_id
		JOIN specialties s ON s.id = m.specialty_id
		WHERE m.is_active = true AND g.is_active = true
		ORDER BY g.goal_key, m.weight DESC`)
	if err != nil {
		return nil, fmt.Errorf("query goal mappings: %w", err)
	}
	defer rows.Close()

	mappings := models.GoalMappings{}
	for rows.Next() {
		var m models.GoalSpecialtyMapping
		var tier string
		if err := rows.Scan(&m.GoalKey, &m.SpecialtyName, &m.Weight, &tier); err != nil {
			return nil, fmt.Errorf("scan goal mapping: %w", err)
		}
		m.MappingType = models.MappingTier(tier)
		mappings[m.GoalKey] = append(mappings[m.GoalKey], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal mappings: %w", err)
	}

	l.toCache(ctx, mappings)
	return mappings, nil
}

// Invalidate drops the cached mapping table, forcing the next read to hit
// Postgres. Called when admins edit mappings.
func (l *Lookup) Invalidate(ctx context.Context) {
	if l.redis == nil {
		return
	}
	if err := l.redis.Del(ctx, mappingsCacheKey).Err(); err != nil {
		l.logger.Warn("mapping cache invalidation failed", map[string]interface{}{"error": err})
	}
}

func (l *Lookup) fromCache(ctx context.Context) models.GoalMappings {
	if l.redis == nil {
		return nil
	}
	val, err := l.redis.Get(ctx, mappingsCacheKey).Result()
	if err != nil {
		return nil
	}
	var mappings models.GoalMappings
	if err := json.Unmarshal([]byte(val), &mappings); err != nil {
		l.logger.Warn("discarding unreadable mapping cache entry", map[string]interface{}{"error": err})
		return nil
	}
	return mappings
}

func (l *Lookup) toCache(ctx context.Context, mappings models.GoalMappings) {
	if l.redis == nil {
		return
	}
	data, err := json.Marshal(mappings)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, mappingsCacheKey, data, l.cacheTTL).Err(); err != nil {
		l.logger.Warn("mapping cache write failed", map[string]interface{}{"error": err})
	}
}
