package wordlehandlers

import (
	"context"
	"errors"
	"log/slog"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRankingsLimit = 10
	genericFailure       = "Could not complete the request, try again later"
)

// WordleHandlers implements the Handlers interface.
type WordleHandlers struct {
	service  wordleservice.Service
	backfill BackfillRunner
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewWordleHandlers creates a new WordleHandlers instance.
func NewWordleHandlers(
	service wordleservice.Service,
	backfill BackfillRunner,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &WordleHandlers{
		service:  service,
		backfill: backfill,
		logger:   logger,
		tracer:   tracer,
	}
}

// HandleMessageReceived records a score from a live chat message.
func (h *WordleHandlers) HandleMessageReceived(ctx context.Context, payload *wordleevents.MessageReceivedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "WordleHandlers.HandleMessageReceived")
	defer span.End()

	res, err := h.service.RecordMessage(ctx, wordledomain.Message{
		ID:        payload.MessageID,
		ChannelID: payload.ChannelID,
		AuthorID:  payload.AuthorID,
		AuthorBot: payload.AuthorBot,
		Content:   payload.Content,
		Timestamp: payload.Timestamp,
	})
	if errors.Is(err, wordledomain.ErrMissingTimestamp) {
		// Redelivery would not add a timestamp.
		h.logger.WarnContext(ctx, "Dropping score report without timestamp",
			slog.String("message_id", payload.MessageID),
			slog.String("channel_id", payload.ChannelID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !res.Matched || res.Rejected != nil || !res.Outcome.Stored() {
		return nil, nil
	}

	return []handlerwrapper.Result{{
		Topic: wordleevents.ScoreRecordedV1,
		Payload: &wordleevents.ScoreRecordedPayloadV1{
			MessageID: payload.MessageID,
			ChannelID: payload.ChannelID,
			PlayerID:  payload.AuthorID,
			Day:       res.Score.Day,
			Outcome:   res.Outcome.String(),
		},
	}}, nil
}

// HandleStatsRequested answers the stats command.
func (h *WordleHandlers) HandleStatsRequested(ctx context.Context, payload *wordleevents.StatsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "WordleHandlers.HandleStatsRequested")
	defer span.End()

	player := payload.User
	if player == "" {
		player = payload.RequestedBy
	}

	reply := func(content string, found bool) []handlerwrapper.Result {
		return []handlerwrapper.Result{{
			Topic: handlerwrapper.ReplyTopic(ctx, wordleevents.StatsResponseV1),
			Payload: &wordleevents.StatsResponsePayloadV1{
				InteractionID: payload.InteractionID,
				Content:       content,
				Found:         found,
			},
		}}
	}

	filter := wordledomain.StatsFilter{HardModeOnly: payload.Hard}
	if payload.Day != "" {
		day, err := h.service.ResolveDay(payload.Day, timeNow())
		if err != nil {
			h.logger.InfoContext(ctx, "Rejected stats day option",
				slog.String("day", payload.Day),
				slog.String("error", err.Error()),
			)
			return reply("Could not understand day "+quote(payload.Day), false), nil
		}
		filter.Day = &day
	}

	stats, err := h.service.GetStats(ctx, player, filter)
	if err != nil {
		if errors.Is(err, wordledomain.ErrNoData) {
			return reply(wordleservice.FormatNoStats(player), false), nil
		}
		h.logger.ErrorContext(ctx, "Failed to compute stats",
			slog.String("player_id", player),
			slog.String("error", err.Error()),
		)
		return reply(genericFailure, false), nil
	}

	return reply(wordleservice.FormatStats(player, *stats), true), nil
}

// HandleBackfillRequested hands the load command to the backfill runner.
func (h *WordleHandlers) HandleBackfillRequested(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "WordleHandlers.HandleBackfillRequested")
	defer span.End()

	if payload.ChannelID == "" {
		h.logger.WarnContext(ctx, "Backfill request without channel")
		return nil, nil
	}

	h.logger.InfoContext(ctx, "Backfill requested",
		slog.String("channel_id", payload.ChannelID),
		slog.String("requested_by", payload.RequestedBy),
	)
	return h.backfill.RunBackfill(ctx, payload)
}

// HandleRankingsRequested answers the leaderboard command.
func (h *WordleHandlers) HandleRankingsRequested(ctx context.Context, payload *wordleevents.RankingsRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "WordleHandlers.HandleRankingsRequested")
	defer span.End()

	limit := payload.Limit
	if limit <= 0 {
		limit = defaultRankingsLimit
	}

	out := &wordleevents.RankingsResponsePayloadV1{InteractionID: payload.InteractionID}
	standings, err := h.service.Rankings(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to compute rankings", slog.String("error", err.Error()))
		out.Content = genericFailure
	} else {
		out.Entries = make([]wordleevents.RankingEntryV1, len(standings))
		for i, s := range standings {
			out.Entries[i] = wordleevents.RankingEntryV1{
				Rank:       i + 1,
				PlayerID:   s.PlayerID,
				Played:     s.Stats.Total,
				Won:        s.Stats.Successes,
				WinRate:    s.Stats.WinRate(),
				AvgGuesses: s.Stats.AvgGuesses,
			}
		}
		out.Content = wordleservice.FormatRankings(standings)
	}

	return []handlerwrapper.Result{{
		Topic:   handlerwrapper.ReplyTopic(ctx, wordleevents.RankingsResponseV1),
		Payload: out,
	}}, nil
}
