// Package app wires the store, the event bus and the wordle module into a
// running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/wordle-bot/app/eventbus"
	"github.com/Black-And-White-Club/wordle-bot/app/modules/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/observability"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// App is the wordle bot service.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Store         *Store
	EventBus      eventbus.EventBus
	Router        *message.Router
	WordleModule  *wordle.Module
}

// ServiceConfig converts the wordle settings into service settings.
func ServiceConfig(cfg *config.Config) (wordleservice.Config, error) {
	epoch, err := cfg.EpochTime()
	if err != nil {
		return wordleservice.Config{}, err
	}
	cal := wordledomain.Calendar{Epoch: epoch}
	return wordleservice.Config{
		Calendar: cal,
		Policy: wordledomain.DayPolicy{
			Enabled:   cfg.Wordle.DayWindow.Enabled,
			Calendar:  cal,
			Tolerance: cfg.Wordle.DayWindow.Tolerance,
		},
		Grace: cfg.Wordle.Grace,
	}, nil
}

// NewApp initializes the application with the necessary services and configuration.
func NewApp(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger

	svcCfg, err := ServiceConfig(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		QueueGroup: cfg.NATS.QueueGroup,
		JetStream:  cfg.NATS.JetStream,
	}, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	router, err := message.NewRouter(message.RouterConfig{}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	router.AddMiddleware(
		middleware.CorrelationID,
		middleware.Recoverer,
	)

	module, err := wordle.NewWordleModule(ctx, obs, bus, router, store.Repo, wordle.Config{
		Service: svcCfg,
		History: wordle.HistoryConfig{
			Subject:  cfg.Wordle.History.Subject,
			PageSize: cfg.Wordle.History.PageSize,
			Timeout:  cfg.Wordle.History.Timeout,
		},
		Queue: wordle.QueueConfig{
			Enabled: cfg.Queue.Enabled,
			DSN:     cfg.Store.DSN,
			Workers: cfg.Queue.Workers,
		},
	})
	if err != nil {
		_ = router.Close()
		_ = bus.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize wordle module: %w", err)
	}

	return &App{
		Config:        cfg,
		Observability: obs,
		Store:         store,
		EventBus:      bus,
		Router:        router,
		WordleModule:  module,
	}, nil
}

// Run runs the router, the module and the metrics server until ctx is done.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger

	var wg sync.WaitGroup
	wg.Add(1)
	go a.WordleModule.Run(ctx, &wg)

	errCh := make(chan error, 2)
	go func() {
		if err := a.Router.Run(ctx); err != nil {
			errCh <- fmt.Errorf("router: %w", err)
		}
	}()

	if addr := a.Config.Observability.MetricsAddress; addr != "" {
		checks := map[string]observability.HealthFunc{
			"store": a.Store.Ping,
			"nats": func(context.Context) error {
				if !a.EventBus.Conn().IsConnected() {
					return errors.New("not connected")
				}
				return nil
			},
		}
		if q := a.WordleModule.Queue; q != nil {
			checks["queue"] = q.HealthCheck
		}
		go func() {
			if err := observability.Serve(ctx, addr, observability.NewRouter(a.Observability.Registry, checks), logger); err != nil {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	logger.InfoContext(ctx, "Wordle bot running")

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.ErrorContext(ctx, "Service component failed", slog.Any("error", runErr))
	}

	closeErr := a.Close()
	wg.Wait()
	return errors.Join(runErr, closeErr)
}

// Close shuts everything down in reverse start order.
func (a *App) Close() error {
	var errs []error
	if a.WordleModule != nil {
		errs = append(errs, a.WordleModule.Close())
	}
	if a.EventBus != nil {
		errs = append(errs, a.EventBus.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
