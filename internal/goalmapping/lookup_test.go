// internal/goalmapping/lookup_test.go
package goalmapping

import (
	"context"
	"regexp"
	"testing"
	"time"

	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLookup(t *testing.T) (*Lookup, sqlmock.Sqlmock, *miniredis.Miniredis) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	lookup := New(db, redisClient, 5*time.Minute, logger.NewNoOpLogger())
	return lookup, dbMock, mr
}

func mappingRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"goal_key", "name", "weight", "mapping_type"}).
		AddRow("weight_loss", "Weight Loss Coaching", 100, "primary").
		AddRow("weight_loss", "Nutrition", 60, "secondary").
		AddRow("strength", "Strength Training", 100, "primary")
}

func TestGetActiveMappings_GroupsByGoal(t *testing.T) {
	lookup, dbMock, _ := newTestLookup(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(mappingRows())

	mappings, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	require.Len(t, mappings, 2)
	require.Len(t, mappings["weight_loss"], 2)
	assert.Equal(t, "Weight Loss Coaching", mappings["weight_loss"][0].SpecialtyName)
	assert.Equal(t, models.MappingTierPrimary, mappings["weight_loss"][0].MappingType)
	assert.Equal(t, 60, mappings["weight_loss"][1].Weight)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGetActiveMappings_SecondCallServedFromCache(t *testing.T) {
	lookup, dbMock, _ := newTestLookup(t)

	// One database expectation only; the second call must hit Redis.
	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(mappingRows())

	first, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	second, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestInvalidate_ForcesReload(t *testing.T) {
	lookup, dbMock, _ := newTestLookup(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(mappingRows())
	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(sqlmock.NewRows([]string{"goal_key", "name", "weight", "mapping_type"}).
			AddRow("strength", "Strength Training", 100, "primary"))

	_, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	lookup.Invalidate(context.Background())

	reloaded, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	assert.Len(t, reloaded, 1)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestGetActiveMappings_ExpiredCacheFallsThrough(t *testing.T) {
	lookup, dbMock, mr := newTestLookup(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(mappingRows())
	dbMock.ExpectQuery(regexp.QuoteMeta("FROM goal_specialty_mappings")).
		WillReturnRows(mappingRows())

	_, err := lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)

	mr.FastForward(10 * time.Minute)

	_, err = lookup.GetActiveMappings(context.Background())
	require.NoError(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
