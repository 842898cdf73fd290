package wordle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Black-And-White-Club/wordle-bot/app/eventbus"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordlehandlers "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/handlers"
	wordlehistory "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/history"
	wordlequeue "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/queue"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	wordlerouter "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/router"
	"github.com/Black-And-White-Club/wordle-bot/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// HistoryConfig configures channel history paging.
type HistoryConfig struct {
	Subject  string
	PageSize int
	Timeout  time.Duration
}

// QueueConfig enables river-backed backfills.
type QueueConfig struct {
	Enabled bool
	DSN     string
	Workers int
}

// Config holds the module settings.
type Config struct {
	Service wordleservice.Config
	History HistoryConfig
	Queue   QueueConfig
}

// Module represents the wordle module.
type Module struct {
	WordleService wordleservice.Service
	WordleRouter  *wordlerouter.WordleRouter
	Queue         *wordlequeue.Service
	cancelFunc    context.CancelFunc
	observability observability.Observability
}

// NewWordleModule creates and initializes a new wordle module.
func NewWordleModule(
	ctx context.Context,
	obs observability.Observability,
	eventBus eventbus.EventBus,
	router *message.Router,
	repo wordledb.Repository,
	cfg Config,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "wordle.NewWordleModule initializing")

	// 1. Initialize Service
	service := wordleservice.NewWordleService(repo, logger, obs.Metrics, tracer, cfg.Service)

	// 2. Initialize the backfill runner
	history := func(channelID string) wordleservice.History {
		return wordlehistory.NewNATSPager(eventBus.Conn(), channelID,
			wordlehistory.WithSubject(cfg.History.Subject),
			wordlehistory.WithPageSize(cfg.History.PageSize),
			wordlehistory.WithTimeout(cfg.History.Timeout),
		)
	}

	var (
		runner wordlehandlers.BackfillRunner
		queue  *wordlequeue.Service
	)
	if cfg.Queue.Enabled {
		worker := wordlequeue.NewBackfillWorker(service, history, eventBus, logger)
		q, err := wordlequeue.NewService(ctx, cfg.Queue.DSN, cfg.Queue.Workers, worker, logger, obs.Metrics)
		if err != nil {
			return nil, fmt.Errorf("failed to create wordle queue: %w", err)
		}
		runner, queue = q, q
	} else {
		runner = wordlehandlers.NewInlineBackfill(service, history, logger)
	}

	// 3. Initialize Handlers
	handlers := wordlehandlers.NewWordleHandlers(service, runner, logger, tracer)

	// 4. Initialize Router
	wordleRouter := wordlerouter.NewWordleRouter(logger, router, eventBus, eventBus, tracer)

	// 5. Configure the router with handlers
	if err := wordleRouter.Configure(ctx, handlers); err != nil {
		return nil, fmt.Errorf("failed to configure wordle router: %w", err)
	}

	return &Module{
		WordleService: service,
		WordleRouter:  wordleRouter,
		Queue:         queue,
		observability: obs,
	}, nil
}

// Run starts the wordle module.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting wordle module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Queue != nil {
		if err := m.Queue.Start(ctx); err != nil {
			logger.ErrorContext(ctx, "Wordle queue failed to start", "error", err)
			return
		}
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Wordle module goroutine stopped")
}

// Close shuts down the wordle module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping wordle module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	if m.Queue != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.Queue.Stop(stopCtx); err != nil {
			logger.Error("Error stopping wordle queue", "error", err)
		}
	}

	if m.WordleRouter != nil {
		if err := m.WordleRouter.Close(); err != nil {
			logger.Error("Error closing WordleRouter from module", "error", err)
			return fmt.Errorf("error closing WordleRouter: %w", err)
		}
	}

	logger.Info("Wordle module stopped")
	return nil
}
