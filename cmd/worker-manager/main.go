// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fitmatch-workers/internal/common/aws"
	"fitmatch-workers/internal/common/camunda"
	"fitmatch-workers/internal/common/config"
	"fitmatch-workers/internal/common/database"
	"fitmatch-workers/internal/common/logger"
	"fitmatch-workers/internal/common/observability"
	"fitmatch-workers/internal/configstore"
	"fitmatch-workers/internal/goalmapping"
	"fitmatch-workers/pkg/registry"

	// Matching Workers (4)
	ahe "fitmatch-workers/internal/workers/matching/apply-hard-exclusions"
	cms "fitmatch-workers/internal/workers/matching/calculate-match-score"
	cm "fitmatch-workers/internal/workers/matching/compute-matches"
	dr "fitmatch-workers/internal/workers/matching/diversity-reorder"

	// Data Access Workers (1)
	qtp "fitmatch-workers/internal/workers/data-access/query-trainer-pool"

	// Admin Workers (2)
	mcd "fitmatch-workers/internal/workers/admin/manage-config-draft"
	pcv "fitmatch-workers/internal/workers/admin/publish-config-version"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Activity Registry ---
	reg, err := registry.LoadRegistry("configs/activity-registry.json")
	if err != nil {
		zapLog.Warn("activity registry not loaded, payload schemas unavailable", zap.Error(err))
		reg = &registry.ActivityRegistry{}
	} else if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.Raw()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init AWS Notification Clients ---
	var emailSender pcv.EmailSender
	var smsSender pcv.SMSSender

	if cfg.Notifications.AWS.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		emailSender = sesClient
		zapLog.Info("SES client initialized")
	}

	if cfg.Notifications.AWS.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = snsClient
		zapLog.Info("SNS client initialized")
	}

	// --- Shared Domain Stores ---
	configStore := configstore.New(
		pg.GetDB(),
		redis.GetClient(),
		time.Duration(cfg.Matching.ConfigCacheTTL)*time.Second,
		log,
	)
	mappingLookup := goalmapping.New(
		pg.GetDB(),
		redis.GetClient(),
		time.Duration(cfg.Matching.MappingCacheTTL)*time.Second,
		log,
	)

	// --- START: Register ALL 7 Workers ---

	// --- 1. Matching Workers (4) ---
	if cfg.Workers[cm.TaskType].Enabled {
		handler := cm.NewHandler(
			&cm.Config{
				Timeout:     time.Duration(cfg.Workers[cm.TaskType].Timeout) * time.Millisecond,
				MaxPoolSize: cfg.Matching.MaxPoolSize,
			},
			configStore, mappingLookup, log,
		)
		startWorker(zeebeClient, cm.TaskType, cfg.Workers[cm.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, cm.TaskType, zapLog)
	}

	if cfg.Workers[ahe.TaskType].Enabled {
		handler := ahe.NewHandler(
			&ahe.Config{
				Timeout: time.Duration(cfg.Workers[ahe.TaskType].Timeout) * time.Millisecond,
			},
			configStore, log,
		)
		startWorker(zeebeClient, ahe.TaskType, cfg.Workers[ahe.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, ahe.TaskType, zapLog)
	}

	if cfg.Workers[cms.TaskType].Enabled {
		handler := cms.NewHandler(
			&cms.Config{
				Timeout: time.Duration(cfg.Workers[cms.TaskType].Timeout) * time.Millisecond,
			},
			configStore, mappingLookup, log,
		)
		startWorker(zeebeClient, cms.TaskType, cfg.Workers[cms.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, cms.TaskType, zapLog)
	}

	if cfg.Workers[dr.TaskType].Enabled {
		handler := dr.NewHandler(
			&dr.Config{
				Timeout: time.Duration(cfg.Workers[dr.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		startWorker(zeebeClient, dr.TaskType, cfg.Workers[dr.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, dr.TaskType, zapLog)
	}

	// --- 2. Data Access Workers (1) ---
	if cfg.Workers[qtp.TaskType].Enabled {
		handler := qtp.NewHandler(
			&qtp.Config{
				Timeout:      time.Duration(cfg.Workers[qtp.TaskType].Timeout) * time.Millisecond,
				TrainerIndex: cfg.Matching.TrainerIndex,
				MaxPoolSize:  cfg.Matching.MaxPoolSize,
			},
			esClient.GetClient(), pg.GetDB(), log,
		)
		startWorker(zeebeClient, qtp.TaskType, cfg.Workers[qtp.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, qtp.TaskType, zapLog)
	}

	// --- 3. Admin Workers (2) ---
	if cfg.Workers[mcd.TaskType].Enabled {
		handler := mcd.NewHandler(
			&mcd.Config{
				Timeout: time.Duration(cfg.Workers[mcd.TaskType].Timeout) * time.Millisecond,
			},
			configStore, log,
		)
		startWorker(zeebeClient, mcd.TaskType, cfg.Workers[mcd.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, mcd.TaskType, zapLog)
	}

	if cfg.Workers[pcv.TaskType].Enabled {
		handler := pcv.NewHandler(
			&pcv.Config{
				Timeout:     time.Duration(cfg.Workers[pcv.TaskType].Timeout) * time.Millisecond,
				SenderEmail: cfg.Notifications.AWS.SES.FromEmail,
				AdminEmail:  cfg.Notifications.AdminEmail,
				AdminPhone:  cfg.Notifications.AdminPhone,
			},
			configStore, emailSender, smsSender, log,
		)
		startWorker(zeebeClient, pcv.TaskType, cfg.Workers[pcv.TaskType], handler.Handle, zapLog)
		warnIfUnregistered(reg, pcv.TaskType, zapLog)
	}

	zapLog.Info("All 7 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range runningWorkers {
		w.Stop(shutdownCtx)
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func warnIfUnregistered(reg *registry.ActivityRegistry, taskType string, log *zap.Logger) {
	if reg.FindByTaskType(taskType) == nil {
		log.Warn("task type missing from activity registry", zap.String("taskType", taskType))
	}
}

var runningWorkers []*camunda.CamundaWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w := camunda.NewWorker(
		client,
		taskType,
		wcfg.MaxJobsActive,
		time.Duration(wcfg.Timeout)*time.Millisecond,
		handlerFunc,
		log,
	)
	w.Start()
	runningWorkers = append(runningWorkers, w)

	log.Info("worker registered",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
