package wordleservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
)

// Loader backfills the leaderboard from channel history.
type Loader struct {
	repo   wordledb.Repository
	policy wordledomain.DayPolicy
	cutoff time.Time
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a loader that stops at the first message older than
// cutoff.
func NewLoader(repo wordledb.Repository, policy wordledomain.DayPolicy, cutoff time.Time, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{repo: repo, policy: policy, cutoff: cutoff, logger: logger, now: time.Now}
}

// Load walks history newest first. Per-message failures, including
// unreadable items and messages without a timestamp, are counted and skipped. A history or context error ends the walk and is returned
// with the counters gathered so far; everything already stored stays valid.
func (l *Loader) Load(ctx context.Context, history History) (res BackfillResult, err error) {
	start := l.now()
	players := make(map[string]struct{})

	defer func() {
		res.Players = len(players)
		res.Elapsed = l.now().Sub(start)
	}()

	for msg, walkErr := range history.Messages(ctx) {
		if errors.Is(walkErr, wordledomain.ErrMalformedMessage) {
			res.Scanned++
			res.Failed++
			l.logger.WarnContext(ctx, "Skipping unreadable history message",
				attr.ExtractCorrelationID(ctx),
				attr.Error(walkErr),
			)
			continue
		}
		if walkErr != nil {
			return res, fmt.Errorf("history walk stopped after %d messages: %w", res.Scanned, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !msg.HasTimestamp() {
			res.Scanned++
			res.Failed++
			l.logger.WarnContext(ctx, "Skipping history message without timestamp",
				attr.ExtractCorrelationID(ctx),
				attr.String("message_id", msg.ID),
				attr.String("player_id", msg.AuthorID),
			)
			continue
		}
		if msg.Timestamp.Before(l.cutoff) {
			break
		}
		res.Scanned++

		if msg.AuthorBot {
			res.Ignored++
			continue
		}

		score, _, err := wordledomain.Parse(msg.Content)
		if err != nil {
			res.Ignored++
			continue
		}

		if err := l.policy.Check(score.Day, msg.Timestamp); err != nil {
			res.OutOfWindow++
			continue
		}

		outcome, err := l.repo.Upsert(ctx, msg.AuthorID, wordledomain.TimestampedScore{
			Timestamp: msg.Timestamp.Unix(),
			Score:     score,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return res, err
			}
			res.Failed++
			l.logger.WarnContext(ctx, "Failed to store backfilled score",
				attr.ExtractCorrelationID(ctx),
				attr.String("message_id", msg.ID),
				attr.String("player_id", msg.AuthorID),
				attr.Error(err),
			)
			continue
		}

		switch outcome {
		case wordledomain.Inserted:
			res.Inserted++
		case wordledomain.Replaced:
			res.Replaced++
		default:
			res.Unchanged++
		}
		if outcome.Stored() {
			players[msg.AuthorID] = struct{}{}
		}
	}

	return res, nil
}
