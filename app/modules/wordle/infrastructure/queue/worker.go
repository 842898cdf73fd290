package wordlequeue

import (
	"context"
	"log/slog"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordlehandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/handlers"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

const backfillTimeout = 30 * time.Minute

// BackfillWorker runs queued backfills and publishes their summary.
type BackfillWorker struct {
	river.WorkerDefaults[BackfillJob]

	service   wordleservice.Service
	history   wordlehandlers.HistoryFactory
	publisher message.Publisher
	logger    *slog.Logger
}

// NewBackfillWorker creates a worker for BackfillJob.
func NewBackfillWorker(
	service wordleservice.Service,
	history wordlehandlers.HistoryFactory,
	publisher message.Publisher,
	logger *slog.Logger,
) *BackfillWorker {
	return &BackfillWorker{
		service:   service,
		history:   history,
		publisher: publisher,
		logger:    logger,
	}
}

// Timeout overrides river's default so long channels can finish.
func (w *BackfillWorker) Timeout(*river.Job[BackfillJob]) time.Duration {
	return backfillTimeout
}

// Work runs the backfill. A failed backfill is reported to the requester
// and not retried; only a failed publish fails the job.
func (w *BackfillWorker) Work(ctx context.Context, job *river.Job[BackfillJob]) error {
	args := job.Args
	ctx = attr.WithCorrelationID(ctx, args.CorrelationID)

	w.logger.InfoContext(ctx, "Running queued backfill",
		attr.ExtractCorrelationID(ctx),
		attr.String("channel_id", args.ChannelID),
		attr.String("requested_by", args.RequestedBy),
	)

	completed := wordlehandlers.CompleteBackfill(ctx, w.service, w.history(args.ChannelID), &wordleevents.BackfillRequestedPayloadV1{
		InteractionID: args.InteractionID,
		ChannelID:     args.ChannelID,
		RequestedBy:   args.RequestedBy,
	}, w.logger)

	topic := args.ReplyTo
	if topic == "" {
		topic = wordleevents.BackfillCompletedV1
	}
	return handlerwrapper.Publish(w.publisher, args.CorrelationID, handlerwrapper.Result{
		Topic:   topic,
		Payload: completed,
	})
}
