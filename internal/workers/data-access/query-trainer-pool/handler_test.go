// internal/workers/data-access/query-trainer-pool/handler_test.go
package querytrainerpool

import (
	"context"
	"regexp"
	"testing"
	"time"

	errs "fitmatch-workers/internal/common/errors"
	"fitmatch-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// No ES client wired: execute goes straight to the Postgres path.
	h := NewHandler(&Config{
		Timeout:      10 * time.Second,
		TrainerIndex: "trainers",
		MaxPoolSize:  500,
	}, nil, db, logger.NewNoOpLogger())

	return h, dbMock
}

func trainerColumns() []string {
	return []string{"id", "name", "specialties", "coaching_styles", "vibe", "communication_style",
		"delivery_formats", "hourly_rate", "package_prices", "experience_years",
		"rating", "gender", "offers_discovery_call", "accepting_new_clients"}
}

func TestExecute_PostgresFallback(t *testing.T) {
	h, dbMock := newTestHandler(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM trainers")).
		WillReturnRows(sqlmock.NewRows(trainerColumns()).
			AddRow("t1", "Jordan", "{Weight Loss Coaching}", "{supportive}", "supportive", "encouraging",
				"{online}", 80.0, "{300,550}", 6, 4.8, "female", true, true).
			AddRow("t2", "Sam", "{Strength Training}", "{strict}", "structured", "direct",
				"{in-person,gym}", 95.0, "{}", 9, 4.6, nil, false, nil))

	output, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, "postgres", output.Source)
	require.Len(t, output.Trainers, 2)

	first := output.Trainers[0]
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, []string{"Weight Loss Coaching"}, first.Specialties)
	assert.Equal(t, []float64{300, 550}, first.PackagePrices)
	assert.Equal(t, "female", first.Gender)
	require.NotNil(t, first.AcceptingNewClients)
	assert.True(t, *first.AcceptingNewClients)

	second := output.Trainers[1]
	assert.Empty(t, second.Gender)
	assert.Nil(t, second.AcceptingNewClients)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestExecute_EmptyPoolIsAnError(t *testing.T) {
	h, dbMock := newTestHandler(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM trainers")).
		WillReturnRows(sqlmock.NewRows(trainerColumns()))

	_, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrEmptyPool)

	stdErr := h.toStandardError(err)
	assert.Equal(t, errs.ErrCodeEmptyTrainerPool, stdErr.Code)
	assert.False(t, stdErr.Retryable)
	assert.Equal(t, 0, errs.GetRetryCount(stdErr.Code))
}

func TestExecute_MaxRateFilterApplied(t *testing.T) {
	h, dbMock := newTestHandler(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("hourly_rate <= $1")).
		WithArgs(100.0, 500).
		WillReturnRows(sqlmock.NewRows(trainerColumns()).
			AddRow("t1", "Jordan", "{Yoga}", "{}", "", "", "{online}", 80.0, "{}", 4, 4.5, nil, false, nil))

	output, err := h.Execute(context.Background(), &Input{MaxRate: 100})
	require.NoError(t, err)
	assert.Len(t, output.Trainers, 1)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestExecute_RatingAndAcceptingFilters(t *testing.T) {
	h, dbMock := newTestHandler(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("rating >= $1 AND accepting_new_clients = true")).
		WithArgs(4.5, 500).
		WillReturnRows(sqlmock.NewRows(trainerColumns()).
			AddRow("t1", "Jordan", "{Yoga}", "{}", "", "", "{online}", 80.0, "{}", 4, 4.8, nil, false, true))

	output, err := h.Execute(context.Background(), &Input{MinRating: 4.5, AcceptingOnly: true})
	require.NoError(t, err)
	assert.Len(t, output.Trainers, 1)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestExecute_QueryFailureIsRetryable(t *testing.T) {
	h, dbMock := newTestHandler(t)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM trainers")).
		WillReturnError(assert.AnError)

	_, err := h.Execute(context.Background(), &Input{})
	assert.ErrorIs(t, err, ErrPoolQueryFailed)

	stdErr := h.toStandardError(err)
	assert.Equal(t, errs.ErrCodeTrainerPoolQueryFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, 3, errs.GetRetryCount(stdErr.Code))
}
