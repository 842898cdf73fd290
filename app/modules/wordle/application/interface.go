package wordleservice

import (
	"context"
	"iter"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
)

// Service is the wordle leaderboard application service.
type Service interface {
	// RecordMessage parses a live chat message and stores its score.
	RecordMessage(ctx context.Context, msg wordledomain.Message) (RecordResult, error)

	// GetStats aggregates a player's scores. It returns
	// wordledomain.ErrNoData when nothing matches the filter.
	GetStats(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (*wordledomain.Stats, error)

	// Backfill walks history newest first, storing every score down to the
	// configured cutoff, then flushes the store.
	Backfill(ctx context.Context, channelID string, history History) (*BackfillResult, error)

	// Rankings orders every player with at least one score.
	Rankings(ctx context.Context, limit int) ([]wordledomain.Standing, error)

	// ResolveDay turns a stats day option into a puzzle day.
	ResolveDay(input string, now time.Time) (uint32, error)
}

// History is a channel's message history, newest first. Each call to
// Messages starts a fresh walk.
type History interface {
	Messages(ctx context.Context) iter.Seq2[wordledomain.Message, error]
}

// RecordResult describes what happened to a live message.
type RecordResult struct {
	// Matched is false for ordinary chat text.
	Matched bool
	Score   wordledomain.Score
	Outcome wordledomain.Outcome
	// Rejected is set when the day policy refused the score.
	Rejected error
}

// BackfillResult holds the counters of one backfill run.
type BackfillResult struct {
	ChannelID   string
	Scanned     int
	Inserted    int
	Replaced    int
	Unchanged   int
	Ignored     int
	OutOfWindow int
	Failed      int
	Players     int
	Elapsed     time.Duration
}

// Stored is the number of scores inserted or replaced.
func (r BackfillResult) Stored() int {
	return r.Inserted + r.Replaced
}
