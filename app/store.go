package app

import (
	"context"
	"fmt"

	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/Black-And-White-Club/wordle-bot/internal/db/bundb"
	"github.com/uptrace/bun"
)

// Store is an opened leaderboard store.
type Store struct {
	Repo wordledb.Repository
	// DB is set for the SQL drivers.
	DB    *bun.DB
	ping  func(ctx context.Context) error
	close func() error
}

// Close releases the store's connections.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Ping reports whether the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.DB != nil {
		return s.DB.PingContext(ctx)
	}
	if s.ping != nil {
		return s.ping(ctx)
	}
	return s.Repo.Flush(ctx)
}

// OpenStore opens the configured store. SQLite creates its tables on open;
// Postgres expects `wordlebot migrate up` to have run.
func OpenStore(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	switch cfg.Driver {
	case config.DriverRedis:
		var opts []wordledb.RedisOption
		if cfg.RedisAOFSync > 0 {
			opts = append(opts, wordledb.WithAOFSync(cfg.RedisAOFSync))
		}
		repo, err := wordledb.NewRedisRepository(cfg.RedisURL, cfg.RedisPrefix, opts...)
		if err != nil {
			return nil, err
		}
		return &Store{Repo: repo, ping: repo.Ping, close: repo.Close}, nil

	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.DSN
		if cfg.Driver == config.DriverSQLite {
			dsn = cfg.Path
		}
		db, err := bundb.Open(ctx, cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		if cfg.Driver == config.DriverSQLite {
			if err := wordledb.CreateSchema(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &Store{Repo: wordledb.NewRepository(db), DB: db, close: db.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
