package wordlehandlers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/google/uuid"
)

var timeNow = time.Now

func quote(s string) string { return strconv.Quote(s) }

// HistoryFactory returns the history source for a channel.
type HistoryFactory func(channelID string) wordleservice.History

// InlineBackfill runs the backfill inside the handler.
type InlineBackfill struct {
	service wordleservice.Service
	history HistoryFactory
	logger  *slog.Logger
}

// NewInlineBackfill creates a runner that backfills synchronously.
func NewInlineBackfill(service wordleservice.Service, history HistoryFactory, logger *slog.Logger) *InlineBackfill {
	return &InlineBackfill{service: service, history: history, logger: logger}
}

var _ BackfillRunner = (*InlineBackfill)(nil)

func (b *InlineBackfill) RunBackfill(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	completed := CompleteBackfill(ctx, b.service, b.history(payload.ChannelID), payload, b.logger)
	return []handlerwrapper.Result{{
		Topic:   handlerwrapper.ReplyTopic(ctx, wordleevents.BackfillCompletedV1),
		Payload: completed,
	}}, nil
}

// CompleteBackfill runs the backfill and renders the completion payload.
// Failures are reported in the payload rather than returned so the request
// is not redelivered.
func CompleteBackfill(
	ctx context.Context,
	service wordleservice.Service,
	history wordleservice.History,
	payload *wordleevents.BackfillRequestedPayloadV1,
	logger *slog.Logger,
) *wordleevents.BackfillCompletedPayloadV1 {
	runID := uuid.NewString()
	out := &wordleevents.BackfillCompletedPayloadV1{
		InteractionID: payload.InteractionID,
		ChannelID:     payload.ChannelID,
		RunID:         runID,
	}

	res, err := service.Backfill(ctx, payload.ChannelID, history)
	if res != nil {
		out.Scanned = res.Scanned
		out.Stored = res.Stored()
		out.Players = res.Players
		out.Failed = res.Failed
	}
	if err != nil {
		logger.ErrorContext(ctx, "Backfill failed",
			slog.String("run_id", runID),
			slog.String("channel_id", payload.ChannelID),
			slog.String("error", err.Error()),
		)
		out.Status = wordleevents.BackfillStatusFailed
		out.Content = genericFailure
		return out
	}

	out.Status = wordleevents.BackfillStatusCompleted
	out.Content = wordleservice.FormatBackfill(*res)
	logger.InfoContext(ctx, "Backfill completed",
		slog.String("run_id", runID),
		slog.String("channel_id", payload.ChannelID),
		slog.Int("scanned", res.Scanned),
		slog.Int("stored", res.Stored()),
	)
	return out
}
