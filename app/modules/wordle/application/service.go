package wordleservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	wordlemetrics "github.com/Black-And-White-Club/wordle-bot/app/observability/metrics/wordle"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/results"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "WordleService"

// Config holds the calendar and policy knobs of the service.
type Config struct {
	Calendar wordledomain.Calendar
	Policy   wordledomain.DayPolicy
	// Grace extends the backfill cutoff before the epoch.
	Grace time.Duration
}

// WordleService implements the Service interface.
type WordleService struct {
	repo    wordledb.Repository
	logger  *slog.Logger
	metrics wordlemetrics.WordleMetrics
	tracer  trace.Tracer
	cfg     Config
	now     func() time.Time
}

// NewWordleService creates a new WordleService.
func NewWordleService(
	repo wordledb.Repository,
	logger *slog.Logger,
	metrics wordlemetrics.WordleMetrics,
	tracer trace.Tracer,
	cfg Config,
) *WordleService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Calendar.Epoch.IsZero() {
		cfg.Calendar.Epoch = wordledomain.DefaultEpoch
	}
	if cfg.Policy.Calendar.Epoch.IsZero() {
		cfg.Policy.Calendar = cfg.Calendar
	}
	return &WordleService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		cfg:     cfg,
		now:     time.Now,
	}
}

var _ Service = (*WordleService)(nil)

// RecordMessage parses and stores a live message.
func (s *WordleService) RecordMessage(ctx context.Context, msg wordledomain.Message) (RecordResult, error) {
	result, err := withTelemetry(s, ctx, "RecordMessage", msg.AuthorID, func(ctx context.Context) (results.OperationResult[RecordResult, error], error) {
		return s.recordMessageLogic(ctx, msg)
	})
	if err != nil {
		return RecordResult{}, err
	}
	if result.IsFailure() {
		return RecordResult{}, *result.Failure
	}
	return *result.Success, nil
}

func (s *WordleService) recordMessageLogic(ctx context.Context, msg wordledomain.Message) (results.OperationResult[RecordResult, error], error) {
	if msg.AuthorBot {
		return results.SuccessResult[RecordResult, error](RecordResult{}), nil
	}

	score, _, err := wordledomain.Parse(msg.Content)
	if s.metrics != nil {
		s.metrics.RecordMessageParsed(ctx, err == nil)
	}
	if err != nil {
		s.logger.DebugContext(ctx, "Message is not a score report",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.ID),
			attr.Error(err),
		)
		return results.SuccessResult[RecordResult, error](RecordResult{}), nil
	}

	if !msg.HasTimestamp() {
		s.logger.WarnContext(ctx, "Score report has no timestamp",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.ID),
			attr.String("player_id", msg.AuthorID),
		)
		return results.FailureResult[RecordResult, error](
			fmt.Errorf("message %q: %w", msg.ID, wordledomain.ErrMissingTimestamp),
		), nil
	}

	res := RecordResult{Matched: true, Score: score}
	if err := s.cfg.Policy.Check(score.Day, msg.Timestamp); err != nil {
		res.Rejected = err
		s.logger.InfoContext(ctx, "Score outside day window",
			attr.ExtractCorrelationID(ctx),
			attr.String("player_id", msg.AuthorID),
			attr.Uint32("day", score.Day),
		)
		return results.SuccessResult[RecordResult, error](res), nil
	}

	outcome, err := s.repo.Upsert(ctx, msg.AuthorID, wordledomain.TimestampedScore{
		Timestamp: msg.Timestamp.Unix(),
		Score:     score,
	})
	if err != nil {
		return results.OperationResult[RecordResult, error]{}, fmt.Errorf("failed to store score: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordUpsertOutcome(ctx, outcome.String())
	}

	res.Outcome = outcome
	s.logger.InfoContext(ctx, "Score recorded",
		attr.ExtractCorrelationID(ctx),
		attr.String("player_id", msg.AuthorID),
		attr.Uint32("day", score.Day),
		attr.String("outcome", outcome.String()),
	)
	return results.SuccessResult[RecordResult, error](res), nil
}

// GetStats aggregates a player's stored scores.
func (s *WordleService) GetStats(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (*wordledomain.Stats, error) {
	result, err := withTelemetry(s, ctx, "GetStats", playerID, func(ctx context.Context) (results.OperationResult[*wordledomain.Stats, error], error) {
		return s.getStatsLogic(ctx, playerID, filter)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *WordleService) getStatsLogic(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (results.OperationResult[*wordledomain.Stats, error], error) {
	stats, err := s.aggregate(ctx, playerID, filter)
	if err != nil {
		if errors.Is(err, wordledomain.ErrNoData) {
			return results.FailureResult[*wordledomain.Stats, error](err), nil
		}
		return results.OperationResult[*wordledomain.Stats, error]{}, err
	}
	return results.SuccessResult[*wordledomain.Stats, error](&stats), nil
}

func (s *WordleService) aggregate(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (wordledomain.Stats, error) {
	tally := wordledomain.Tally{Filter: filter}
	for entry, err := range s.repo.Iter(ctx, playerID) {
		if err != nil {
			return wordledomain.Stats{}, fmt.Errorf("failed to read scores for %s: %w", playerID, err)
		}
		tally.Add(entry.Score.Score)
	}
	return tally.Stats()
}

// Rankings aggregates every partition and orders the players.
func (s *WordleService) Rankings(ctx context.Context, limit int) ([]wordledomain.Standing, error) {
	result, err := withTelemetry(s, ctx, "Rankings", fmt.Sprintf("limit=%d", limit), func(ctx context.Context) (results.OperationResult[[]wordledomain.Standing, error], error) {
		players, err := s.repo.Players(ctx)
		if err != nil {
			return results.OperationResult[[]wordledomain.Standing, error]{}, fmt.Errorf("failed to list players: %w", err)
		}

		standings := make([]wordledomain.Standing, 0, len(players))
		for _, p := range players {
			stats, err := s.aggregate(ctx, p, wordledomain.StatsFilter{})
			if errors.Is(err, wordledomain.ErrNoData) {
				continue
			}
			if err != nil {
				return results.OperationResult[[]wordledomain.Standing, error]{}, err
			}
			standings = append(standings, wordledomain.Standing{PlayerID: p, Stats: stats})
		}

		wordledomain.Rank(standings)
		if limit > 0 && len(standings) > limit {
			standings = standings[:limit]
		}
		return results.SuccessResult[[]wordledomain.Standing, error](standings), nil
	})
	if err != nil {
		return nil, err
	}
	return *result.Success, nil
}

// Backfill runs the bulk loader over history and flushes the store before
// returning, so the counters only describe durable writes.
func (s *WordleService) Backfill(ctx context.Context, channelID string, history History) (*BackfillResult, error) {
	result, err := withTelemetry(s, ctx, "Backfill", channelID, func(ctx context.Context) (results.OperationResult[*BackfillResult, error], error) {
		loader := NewLoader(s.repo, s.cfg.Policy, s.cfg.Calendar.Cutoff(s.cfg.Grace), s.logger)
		loader.now = s.now

		res, loadErr := loader.Load(ctx, history)
		res.ChannelID = channelID
		if s.metrics != nil {
			s.metrics.RecordBackfill(ctx, res.Scanned, res.Stored(), res.Failed)
		}

		partial := results.SuccessResult[*BackfillResult, error](&res)

		// Partial progress is still worth persisting.
		if err := s.repo.Flush(context.WithoutCancel(ctx)); err != nil {
			return partial, fmt.Errorf("failed to flush store: %w", err)
		}
		if loadErr != nil {
			return partial, loadErr
		}
		return partial, nil
	})
	if result.IsSuccess() {
		// A cancelled or failed walk still reports how far it got.
		return *result.Success, err
	}
	return nil, err
}

// ResolveDay interprets a stats day option relative to now.
func (s *WordleService) ResolveDay(input string, now time.Time) (uint32, error) {
	return ParseDayOption(input, s.cfg.Calendar, now)
}

// operationFunc is the generic type for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps an operation with a span, metrics and panic recovery.
func withTelemetry[S any, F any](
	s *WordleService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
		}
	}()

	s.logger.DebugContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.InfoContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}
