package wordlerouter

import (
	"context"
	"log/slog"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordlehandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/handlers"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/trace"
)

// WordleRouter handles Watermill handler registration for wordle events.
type WordleRouter struct {
	logger     *slog.Logger
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	tracer     trace.Tracer
}

// NewWordleRouter creates a new WordleRouter.
func NewWordleRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	tracer trace.Tracer,
) *WordleRouter {
	return &WordleRouter{
		logger:     logger,
		router:     router,
		subscriber: subscriber,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// Configure sets up the router with handlers.
func (r *WordleRouter) Configure(_ context.Context, handlers wordlehandlers.Handlers) error {
	r.registerHandlers(handlers)
	return nil
}

type handlerDeps struct {
	router     *message.Router
	subscriber message.Subscriber
	publisher  message.Publisher
	logger     *slog.Logger
	tracer     trace.Tracer
}

// registerHandlers wires NATS topics to handler methods.
func (r *WordleRouter) registerHandlers(handlers wordlehandlers.Handlers) {
	deps := handlerDeps{
		router:     r.router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
	}

	r.logger.Info("Registering wordle module handlers",
		slog.String("message_subject", wordleevents.MessageReceivedV1),
		slog.String("stats_subject", wordleevents.StatsRequestedV1),
		slog.String("backfill_subject", wordleevents.BackfillRequestedV1),
		slog.String("rankings_subject", wordleevents.RankingsRequestedV1),
	)

	registerHandler(deps, wordleevents.MessageReceivedV1, handlers.HandleMessageReceived)
	registerHandler(deps, wordleevents.StatsRequestedV1, handlers.HandleStatsRequested)
	registerHandler(deps, wordleevents.BackfillRequestedV1, handlers.HandleBackfillRequested)
	registerHandler(deps, wordleevents.RankingsRequestedV1, handlers.HandleRankingsRequested)

	r.logger.Info("Wordle module handlers registered successfully")
}

// registerHandler registers a typed handler. The wrapper publishes its own
// results, so replies can go to a per-request reply_to topic.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := "wordle." + topic

	deps.router.AddNoPublisherHandler(
		handlerName,
		topic,
		deps.subscriber,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.publisher,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *WordleRouter) Close() error {
	return r.router.Close()
}
