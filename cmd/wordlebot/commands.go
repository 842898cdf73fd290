package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Black-And-White-Club/wordle-bot/app"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordleexport "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/export"
	wordlehistory "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/history"
	"github.com/urfave/cli/v2"
)

// offline bundles what the store-only commands need.
type offline struct {
	store   *app.Store
	service *wordleservice.WordleService
	logger  *slog.Logger
}

func openOffline(c *cli.Context) (*offline, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	svcCfg, err := app.ServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	obs := newObservability(cfg)

	store, err := app.OpenStore(c.Context, cfg.Store)
	if err != nil {
		return nil, err
	}
	return &offline{
		store:   store,
		service: wordleservice.NewWordleService(store.Repo, obs.Logger, obs.Metrics, obs.Tracer, svcCfg),
		logger:  obs.Logger,
	}, nil
}

func backfillCommand() *cli.Command {
	return &cli.Command{
		Name:  "backfill",
		Usage: "load scores from an exported channel history file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true, Usage: "JSON lines history export"},
			&cli.StringFlag{Name: "channel", Required: true, Usage: "channel the history belongs to"},
		},
		Action: func(c *cli.Context) error {
			o, err := openOffline(c)
			if err != nil {
				return err
			}
			defer o.store.Close()

			res, err := o.service.Backfill(c.Context, c.String("channel"), wordlehistory.NewFileHistory(c.String("file")))
			if res != nil {
				fmt.Fprintln(c.App.Writer, wordleservice.FormatBackfill(*res))
			}
			return err
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "print a player's stats",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "player", Required: true},
			&cli.StringFlag{Name: "day", Usage: "puzzle number or date"},
			&cli.BoolFlag{Name: "hard", Usage: "only count hard mode scores"},
		},
		Action: func(c *cli.Context) error {
			o, err := openOffline(c)
			if err != nil {
				return err
			}
			defer o.store.Close()

			filter := wordledomain.StatsFilter{HardModeOnly: c.Bool("hard")}
			if in := c.String("day"); in != "" {
				day, err := o.service.ResolveDay(in, time.Now())
				if err != nil {
					return err
				}
				filter.Day = &day
			}

			player := c.String("player")
			stats, err := o.service.GetStats(c.Context, player, filter)
			if errors.Is(err, wordledomain.ErrNoData) {
				fmt.Fprintln(c.App.Writer, wordleservice.FormatNoStats(player))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, wordleservice.FormatStats(player, *stats))
			return nil
		},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "parse a shared score from the arguments or stdin",
		ArgsUsage: "[text]",
		Action: func(c *cli.Context) error {
			text := strings.Join(c.Args().Slice(), " ")
			if text == "" {
				in := c.App.Reader
				if in == nil {
					in = os.Stdin
				}
				b, err := io.ReadAll(in)
				if err != nil {
					return err
				}
				text = string(b)
			}

			score, rest, err := wordledomain.Parse(text)
			if err != nil {
				return fmt.Errorf("no score found: %w", err)
			}
			fmt.Fprintln(c.App.Writer, score.String())
			if rest = strings.TrimSpace(rest); rest != "" {
				fmt.Fprintf(c.App.Writer, "(unparsed: %q)\n", rest)
			}
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "write every score and the rankings to an xlsx workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "wordle.xlsx", Usage: "output file"},
		},
		Action: func(c *cli.Context) error {
			o, err := openOffline(c)
			if err != nil {
				return err
			}
			defer o.store.Close()

			f, err := os.Create(c.String("out"))
			if err != nil {
				return err
			}

			exporter := wordleexport.NewExporter(o.store.Repo, o.service, o.logger)
			sum, err := exporter.Write(c.Context, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Exported %d scores for %d players to %s\n", sum.Scores, sum.Players, c.String("out"))
			return nil
		},
	}
}
