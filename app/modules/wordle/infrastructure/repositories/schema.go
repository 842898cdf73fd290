package wordledb

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the leaderboard tables if they do not exist.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewCreateTable().Model((*Player)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create wordle_players: %w", err)
	}

	_, err := db.NewCreateTable().
		Model((*ScoreRow)(nil)).
		IfNotExists().
		ForeignKey(`("player_id") REFERENCES "wordle_players" ("player_id") ON DELETE CASCADE`).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create wordle_scores: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*ScoreRow)(nil)).
		Index("idx_wordle_scores_day").
		IfNotExists().
		Column("day").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create idx_wordle_scores_day: %w", err)
	}
	return nil
}

// DropSchema removes the leaderboard tables.
func DropSchema(ctx context.Context, db bun.IDB) error {
	if _, err := db.NewDropTable().Model((*ScoreRow)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("drop wordle_scores: %w", err)
	}
	if _, err := db.NewDropTable().Model((*Player)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("drop wordle_players: %w", err)
	}
	return nil
}
