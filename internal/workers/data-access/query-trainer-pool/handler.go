// internal/workers/data-access/query-trainer-pool/handler.go
package querytrainerpool

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	errs "fitmatch-workers/internal/common/errors"
	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/metrics"
	"fitmatch-workers/internal/models"
	"fitmatch-workers/internal/workers/data-access/query-trainer-pool/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/lib/pq"
)

const (
	TaskType = "query-trainer-pool"
)

var (
	ErrPoolQueryFailed = errors.New("TRAINER_POOL_QUERY_FAILED")
	ErrEmptyPool       = errors.New("EMPTY_TRAINER_POOL")
	ErrSearchTimeout   = errors.New("SEARCH_TIMEOUT")
)

type Handler struct {
	config   *Config
	es       *elasticsearch.Client
	db       *sql.DB
	logger   logger.Logger
	errorHdl *errs.ErrorHandler
}

func NewHandler(config *Config, es *elasticsearch.Client, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		es:       es,
		db:       db,
		logger:   scoped,
		errorHdl: errs.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errorHdl.HandleJobError(context.Background(), client, job,
			fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(h.toStandardError(err).Code)).Inc()
		h.errorHdl.HandleJobError(context.Background(), client, job, h.toStandardError(err))
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.completeJob(client, job, output)
}

// execute queries Elasticsearch first and falls back to Postgres when the
// search tier is unavailable. An empty pool is an error: downstream matching
// has nothing to work with and the process should branch on it.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	size := input.Pagination.Size
	if size <= 0 || size > h.config.MaxPoolSize {
		size = h.config.MaxPoolSize
	}

	if h.es != nil {
		output, err := h.queryElasticsearch(ctx, input, size)
		if err == nil {
			if len(output.Trainers) == 0 {
				return nil, ErrEmptyPool
			}
			return output, nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		h.logger.Warn("elasticsearch query failed, falling back to postgres", map[string]interface{}{
			"error": err,
		})
	}

	output, err := h.queryPostgres(ctx, input, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolQueryFailed, err)
	}
	if len(output.Trainers) == 0 {
		return nil, ErrEmptyPool
	}
	return output, nil
}

func (h *Handler) queryElasticsearch(ctx context.Context, input *Input, size int) (*Output, error) {
	q := queries.TrainerPoolQuery{
		Index:         h.config.TrainerIndex,
		Specialties:   input.Specialties,
		Formats:       input.Formats,
		MaxRate:       input.MaxRate,
		MinRating:     input.MinRating,
		AcceptingOnly: input.AcceptingOnly,
	}
	q.Pagination.From = input.Pagination.From
	q.Pagination.Size = size

	req, err := queries.BuildPoolRequest(q)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, h.es)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search returned status %s", res.Status())
	}

	var envelope struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Trainer `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	trainers := make([]models.Trainer, 0, len(envelope.Hits.Hits))
	for _, hit := range envelope.Hits.Hits {
		trainers = append(trainers, hit.Source)
	}

	return &Output{
		Trainers:  trainers,
		TotalHits: envelope.Hits.Total.Value,
		Source:    "elasticsearch",
	}, nil
}

func (h *Handler) queryPostgres(ctx context.Context, input *Input, size int) (*Output, error) {
	query := `
		SELECT id, name, specialties, coaching_styles, vibe, communication_style,
		       delivery_formats, hourly_rate, package_prices, experience_years,
		       rating, gender, offers_discovery_call, accepting_new_clients
		FROM trainers
		WHERE is_active = true`
	args := []interface{}{}

	if input.MaxRate > 0 {
		args = append(args, input.MaxRate)
		query += fmt.Sprintf(" AND hourly_rate <= $%d", len(args))
	}
	if input.MinRating > 0 {
		args = append(args, input.MinRating)
		query += fmt.Sprintf(" AND rating >= $%d", len(args))
	}
	if input.AcceptingOnly {
		query += " AND accepting_new_clients = true"
	}
	if len(input.Specialties) > 0 {
		args = append(args, pq.Array(input.Specialties))
		query += fmt.Sprintf(" AND specialties && $%d", len(args))
	}

	args = append(args, size)
	query += fmt.Sprintf(" ORDER BY rating DESC LIMIT $%d", len(args))

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainers []models.Trainer
	for rows.Next() {
		var t models.Trainer
		var gender sql.NullString
		var accepting sql.NullBool
		err := rows.Scan(&t.ID, &t.Name, pq.Array(&t.Specialties), pq.Array(&t.CoachingStyles),
			&t.Vibe, &t.CommunicationStyle, pq.Array(&t.DeliveryFormats), &t.HourlyRate,
			pq.Array(&t.PackagePrices), &t.ExperienceYears, &t.Rating, &gender,
			&t.OffersDiscoveryCall, &accepting)
		if err != nil {
			return nil, err
		}
		if gender.Valid {
			t.Gender = gender.String
		}
		if accepting.Valid {
			t.AcceptingNewClients = &accepting.Bool
		}
		trainers = append(trainers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Output{
		Trainers:  trainers,
		TotalHits: int64(len(trainers)),
		Source:    "postgres",
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

// toStandardError maps the package sentinels onto the shared error
// vocabulary so retry counts come from one table.
func (h *Handler) toStandardError(err error) *errs.StandardError {
	if stdErr, ok := err.(*errs.StandardError); ok {
		return stdErr
	}

	switch {
	case errors.Is(err, ErrEmptyPool):
		return &errs.StandardError{
			Code:      errs.ErrCodeEmptyTrainerPool,
			Message:   "Trainer pool query returned no trainers",
			Details:   err.Error(),
			Retryable: false,
			Timestamp: time.Now().UTC(),
		}
	case errors.Is(err, ErrSearchTimeout):
		return &errs.StandardError{
			Code:      errs.ErrCodeSearchTimeout,
			Message:   "Trainer pool search timed out",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	case errors.Is(err, ErrPoolQueryFailed):
		return errs.NewTrainerPoolQueryFailedError(err)
	}

	return errs.NewTrainerPoolQueryFailedError(err)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
