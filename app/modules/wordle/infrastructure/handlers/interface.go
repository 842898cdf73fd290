package wordlehandlers

import (
	"context"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
)

// Handlers handles wordle events.
type Handlers interface {
	HandleMessageReceived(ctx context.Context, payload *wordleevents.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error)
	HandleStatsRequested(ctx context.Context, payload *wordleevents.StatsRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleBackfillRequested(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error)
	HandleRankingsRequested(ctx context.Context, payload *wordleevents.RankingsRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

// BackfillRunner executes a backfill for a channel, either inline or by
// handing it to a job queue.
type BackfillRunner interface {
	RunBackfill(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
