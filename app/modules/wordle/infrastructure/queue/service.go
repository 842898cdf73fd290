package wordlequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordlehandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/handlers"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertype"
)

const metricsService = "river"

// Metrics is the subset of the wordle metrics the queue reports.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

type jobInserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Service enqueues backfills on River and runs their worker.
type Service struct {
	client   *river.Client[pgx.Tx]
	inserter jobInserter
	pool     *pgxpool.Pool
	logger   *slog.Logger
	metrics  Metrics
}

// Service queues backfills instead of running them in the handler.
var _ wordlehandlers.BackfillRunner = (*Service)(nil)

// NewService creates a River client on its own pgx pool.
func NewService(ctx context.Context, dsn string, maxWorkers int, worker *BackfillWorker, logger *slog.Logger, metrics Metrics) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_wordle_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	pool, err := newPool(ctx, dsn)
	if err != nil {
		ctxLogger.Error("Failed to connect River pool", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, err
	}

	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, worker)

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))

	ctxLogger.Info("Wordle queue service initialized")
	return &Service{
		client:   client,
		inserter: client,
		pool:     pool,
		logger:   ctxLogger,
		metrics:  metrics,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "start_service", metricsService)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", metricsService)
	s.logger.Info("Wordle queue service started")
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)
	defer s.pool.Close()

	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "stop_service", metricsService)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", metricsService)
	s.logger.Info("Wordle queue service stopped")
	return nil
}

// HealthCheck verifies the queue database is reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}

// RunBackfill enqueues the request. The worker publishes the summary once
// the job completes; a duplicate request is answered right away.
func (s *Service) RunBackfill(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_backfill", metricsService)

	correlationID := attr.ExtractCorrelationID(ctx).Value.String()
	replyTo := handlerwrapper.ReplyTopic(ctx, wordleevents.BackfillCompletedV1)

	res, err := s.inserter.Insert(ctx, BackfillJob{
		ChannelID:     payload.ChannelID,
		InteractionID: payload.InteractionID,
		RequestedBy:   payload.RequestedBy,
		ReplyTo:       replyTo,
		CorrelationID: correlationID,
	}, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue backfill",
			attr.String("channel_id", payload.ChannelID),
			attr.Error(err),
		)
		s.metrics.RecordOperationFailure(ctx, "enqueue_backfill", metricsService)
		return nil, fmt.Errorf("failed to enqueue backfill: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_backfill", metricsService)
	s.metrics.RecordOperationDuration(ctx, "enqueue_backfill", metricsService, time.Since(start))

	if res.UniqueSkippedAsDuplicate {
		s.logger.InfoContext(ctx, "Backfill already queued",
			attr.String("channel_id", payload.ChannelID),
			attr.Int64("job_id", res.Job.ID),
		)
		return []handlerwrapper.Result{{
			Topic: replyTo,
			Payload: &wordleevents.BackfillCompletedPayloadV1{
				InteractionID: payload.InteractionID,
				ChannelID:     payload.ChannelID,
				Content:       fmt.Sprintf("A load is already running for <#%s>", payload.ChannelID),
				Status:        wordleevents.BackfillStatusRunning,
			},
		}}, nil
	}

	s.logger.InfoContext(ctx, "Backfill queued",
		attr.String("channel_id", payload.ChannelID),
		attr.Int64("job_id", res.Job.ID),
	)
	return nil, nil
}

// Migrate applies River's schema migrations.
func Migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := newPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create river migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run river migrations: %w", err)
	}
	for _, v := range res.Versions {
		logger.Info("Applied river migration", attr.Int("version", v.Version))
	}
	return nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}
