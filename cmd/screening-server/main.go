// cmd/screening-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cv-screening/internal/common/aws"
	"cv-screening/internal/common/config"
	"cv-screening/internal/common/database"
	"cv-screening/internal/common/logger"
	"cv-screening/internal/common/observability"
	"cv-screening/internal/pipeline"
	"cv-screening/internal/pipeline/candidacy"
	"cv-screening/internal/pipeline/evaluate"
	"cv-screening/internal/pipeline/extract"
	"cv-screening/internal/pipeline/keywordgate"
	"cv-screening/internal/pipeline/notify"
	"cv-screening/internal/pipeline/results"
	"cv-screening/internal/pipeline/upload"
	"cv-screening/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting", map[string]interface{}{
		"service":     cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	pg, err := connectPostgres(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pg.Close()

	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return fmt.Errorf("create redis client: %w", err)
	}
	defer redisClient.Close()
	if err := redisClient.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unreachable, result caching degraded", nil)
	}

	repo := candidacy.NewRepository(pg.GetDB(), log)

	var archive pipeline.EvaluationArchive
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			log.WithError(err).Warn("elasticsearch unavailable, archiving disabled", nil)
		} else {
			archive = candidacy.NewArchive(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		}
	}

	store := results.NewStore(redisClient.GetClient(),
		time.Duration(cfg.Database.Redis.ResultTTL)*time.Minute, log)

	evaluator, err := evaluate.NewHandler(evaluate.NewHandlerConfig(cfg), evaluate.DefaultRubric(), log)
	if err != nil {
		return fmt.Errorf("create evaluator: %w", err)
	}

	notifier, err := buildNotifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	gate, err := keywordgate.New(keywordgate.MedicalTerms, log)
	if err != nil {
		return fmt.Errorf("create keyword gate: %w", err)
	}

	p := &pipeline.Pipeline{
		Uploader: upload.NewHandler(&upload.Config{
			MaxCVSizeBytes:           cfg.Upload.MaxCVSizeBytes,
			MaxJustificatifSizeBytes: cfg.Upload.MaxJustificatifSizeBytes,
		}, log),
		Extractor: extract.NewHandler(&extract.Config{
			OCRBaseURL:   cfg.APIs.OCR.BaseURL,
			OCRAPIKey:    cfg.APIs.OCR.APIKey,
			Language:     cfg.APIs.OCR.Language,
			Timeout:      time.Duration(cfg.APIs.OCR.Timeout) * time.Millisecond,
			Debug:        cfg.Upload.DebugExtraction,
			DebugLogPath: cfg.Upload.DebugLogPath,
		}, log),
		Gate:      gate,
		Evaluator: evaluator,
		Notifier:  notifier,
		Store:     repo,
		Archive:   archive,
		Cache:     store,
		UploadDir: cfg.Upload.Directory,
		Obs:       obs,
		Logger:    log,
	}

	srv := server.New(cfg, p, store, log)
	return srv.Run(ctx)
}

// connectPostgres retries the initial connection so the service starts
// cleanly while the database container is still coming up.
func connectPostgres(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	var err error

	for attempt := 1; attempt <= 5; attempt++ {
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err == nil {
			if err = pg.Ping(ctx); err == nil {
				return pg, nil
			}
			pg.Close()
		}

		wait := time.Duration(attempt) * 2 * time.Second
		log.WithError(err).Warn("postgres not ready", map[string]interface{}{
			"attempt": attempt,
			"retryIn": wait.String(),
		})
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect postgres: %w", err)
}

func buildNotifier(ctx context.Context, cfg *config.Config, log logger.Logger) (*notify.Handler, error) {
	var sesClient notify.SESService
	var snsClient notify.SNSService

	if cfg.Notifications.Email.Enabled {
		c, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create ses client: %w", err)
		}
		sesClient = c
	}
	if cfg.Notifications.SMS.Enabled {
		c, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("create sns client: %w", err)
		}
		snsClient = c
	}

	return notify.NewHandler(notify.NewHandlerConfig(cfg), sesClient, snsClient, log), nil
}
