package wordlemigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Picks up any .sql migrations stored next to this file.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
