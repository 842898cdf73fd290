package wordledb

import (
	"context"
	"iter"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
)

// Entry is one stored score in a player's partition.
type Entry struct {
	Day   uint32
	Score wordledomain.TimestampedScore
}

// Repository defines the contract for leaderboard persistence. Every player
// is an independent partition keyed by puzzle day.
type Repository interface {
	// EnsurePartition creates the player's partition if it does not exist.
	EnsurePartition(ctx context.Context, playerID string) error

	// Upsert stores candidate under (playerID, candidate.Score.Day) keeping
	// whichever report has the earliest timestamp. The compare and write is
	// atomic per key.
	Upsert(ctx context.Context, playerID string, candidate wordledomain.TimestampedScore) (wordledomain.Outcome, error)

	// Get returns the stored score for a player and day, or ErrNotFound.
	Get(ctx context.Context, playerID string, day uint32) (*wordledomain.TimestampedScore, error)

	// Iter yields the player's entries in ascending day order. Each call
	// reads a fresh snapshot. Iteration stops at the first error.
	Iter(ctx context.Context, playerID string) iter.Seq2[Entry, error]

	// IsEmpty reports whether the player has no stored scores.
	IsEmpty(ctx context.Context, playerID string) (bool, error)

	// Players lists every known partition in ascending order.
	Players(ctx context.Context) ([]string, error)

	// Flush makes every acknowledged write durable.
	Flush(ctx context.Context) error
}
