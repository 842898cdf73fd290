package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/wordle-bot/app"
	"github.com/Black-And-White-Club/wordle-bot/app/observability"
	"github.com/Black-And-White-Club/wordle-bot/config"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wordlebot",
		Usage: "Wordle leaderboard bot",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"WORDLE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			backfillCommand(),
			statsCommand(),
			parseCommand(),
			exportCommand(),
		},
	}
}

// loadConfig reads the file named by the global --config flag.
func loadConfig(c *cli.Context) (*config.Config, error) {
	return config.LoadConfig(c.String("config"))
}

func newObservability(cfg *config.Config) observability.Observability {
	return observability.New(os.Stderr, observability.Config{
		LogLevel:  cfg.Observability.LogLevel,
		LogFormat: cfg.Observability.LogFormat,
	})
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the bot against NATS",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			obs := newObservability(cfg)

			application, err := app.NewApp(c.Context, cfg, obs)
			if err != nil {
				return err
			}
			return application.Run(c.Context)
		},
	}
}
