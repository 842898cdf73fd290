package wordledb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// BunRepository stores the leaderboard in Postgres or SQLite through bun.
type BunRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewRepository creates a bun backed Repository.
func NewRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, now: time.Now}
}

var _ Repository = (*BunRepository)(nil)

func (r *BunRepository) EnsurePartition(ctx context.Context, playerID string) error {
	return ensurePartition(ctx, r.db, playerID, r.now())
}

func ensurePartition(ctx context.Context, db bun.IDB, playerID string, now time.Time) error {
	_, err := db.NewInsert().
		Model(&Player{PlayerID: playerID, CreatedAt: now.UTC()}).
		On("CONFLICT (player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ensure partition %q: %w", playerID, err)
	}
	return nil
}

// Upsert inserts the candidate, or replaces the stored row only when the
// stored timestamp is strictly later. Both statements are single-row atomic
// so concurrent writers converge on the earliest report.
func (r *BunRepository) Upsert(ctx context.Context, playerID string, candidate wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
	value, err := wordledomain.EncodeValue(candidate)
	if err != nil {
		return wordledomain.Unchanged, err
	}

	now := r.now().UTC()
	row := &ScoreRow{
		PlayerID:   playerID,
		DayKey:     wordledomain.DayKey(candidate.Score.Day),
		Day:        int64(candidate.Score.Day),
		ReportedAt: candidate.Timestamp,
		Value:      value,
		UpdatedAt:  now,
	}

	outcome := wordledomain.Unchanged
	err = r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := ensurePartition(ctx, tx, playerID, now); err != nil {
			return err
		}

		res, err := tx.NewInsert().
			Model(row).
			On("CONFLICT (player_id, day_key) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert score: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			outcome = wordledomain.Inserted
			return nil
		}

		res, err = tx.NewUpdate().
			Model(row).
			Column("reported_at", "value", "updated_at").
			Where("player_id = ?", playerID).
			Where("day_key = ?", row.DayKey).
			Where("reported_at > ?", candidate.Timestamp).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("replace score: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			outcome = wordledomain.Replaced
		}
		return nil
	})
	if err != nil {
		return wordledomain.Unchanged, err
	}
	return outcome, nil
}

func (r *BunRepository) Get(ctx context.Context, playerID string, day uint32) (*wordledomain.TimestampedScore, error) {
	row := new(ScoreRow)
	err := r.db.NewSelect().
		Model(row).
		Where("player_id = ?", playerID).
		Where("day_key = ?", wordledomain.DayKey(day)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get score: %w", err)
	}

	entry, err := decodeRow(row)
	if err != nil {
		return nil, err
	}
	return &entry.Score, nil
}

// Iter streams rows off a single SELECT. On SQLite the connection is held
// until iteration ends, so callers must not write from inside the loop.
func (r *BunRepository) Iter(ctx context.Context, playerID string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		rows, err := r.db.NewSelect().
			Model((*ScoreRow)(nil)).
			Column("player_id", "day_key", "value").
			Where("player_id = ?", playerID).
			Order("day_key ASC").
			Rows(ctx)
		if err != nil {
			yield(Entry{}, fmt.Errorf("iterate scores: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			row := new(ScoreRow)
			if err := r.db.ScanRow(ctx, rows, row); err != nil {
				yield(Entry{}, fmt.Errorf("scan score: %w", err))
				return
			}
			entry, err := decodeRow(row)
			if !yield(entry, err) || err != nil {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("iterate scores: %w", err))
		}
	}
}

func (r *BunRepository) IsEmpty(ctx context.Context, playerID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*ScoreRow)(nil)).
		Where("player_id = ?", playerID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("check scores: %w", err)
	}
	return !exists, nil
}

func (r *BunRepository) Players(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.NewSelect().
		Model((*Player)(nil)).
		Column("player_id").
		Order("player_id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return ids, nil
}

// Flush checkpoints the WAL on SQLite. Postgres commits are already durable.
func (r *BunRepository) Flush(ctx context.Context) error {
	if r.db.Dialect().Name() != dialect.SQLite {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, "PRAGMA wal_checkpoint(FULL)"); err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	return nil
}

func decodeRow(row *ScoreRow) (Entry, error) {
	day, err := wordledomain.ParseDayKey(row.DayKey)
	if err != nil {
		return Entry{}, fmt.Errorf("player %q: %w", row.PlayerID, err)
	}
	ts, err := wordledomain.DecodeValue(row.Value)
	if err != nil {
		return Entry{}, fmt.Errorf("player %q day %d: %w", row.PlayerID, day, err)
	}
	return Entry{Day: day, Score: ts}, nil
}
