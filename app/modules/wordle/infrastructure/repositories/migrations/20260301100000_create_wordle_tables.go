package wordlemigrations

import (
	"context"
	"fmt"

	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating wordle_players and wordle_scores tables...")

		if err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return wordledb.CreateSchema(ctx, tx)
		}); err != nil {
			return err
		}

		fmt.Println("Wordle tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping wordle_scores and wordle_players tables...")

		if err := db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return wordledb.DropSchema(ctx, tx)
		}); err != nil {
			return err
		}

		fmt.Println("Wordle tables dropped successfully!")
		return nil
	})
}
