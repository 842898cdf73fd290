// Package wordleexport writes the leaderboard to an xlsx workbook.
package wordleexport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	ScoresSheet   = "Scores"
	RankingsSheet = "Rankings"
)

var (
	scoresHeader   = []any{"Player", "Day", "Solved", "Guesses", "Hard mode", "Reported at", "Grid"}
	rankingsHeader = []any{"Rank", "Player", "Played", "Won", "Win rate", "Average guesses", "Hard mode"}
)

// RankingSource orders players for the rankings sheet.
type RankingSource interface {
	Rankings(ctx context.Context, limit int) ([]wordledomain.Standing, error)
}

// Summary counts what was written.
type Summary struct {
	Players int
	Scores  int
}

// Exporter builds leaderboard workbooks.
type Exporter struct {
	repo     wordledb.Repository
	rankings RankingSource
	logger   *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(repo wordledb.Repository, rankings RankingSource, logger *slog.Logger) *Exporter {
	return &Exporter{repo: repo, rankings: rankings, logger: logger}
}

// Write renders every stored score and the full rankings to w.
func (e *Exporter) Write(ctx context.Context, w io.Writer) (Summary, error) {
	var sum Summary

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ScoresSheet); err != nil {
		return sum, fmt.Errorf("failed to name scores sheet: %w", err)
	}
	if _, err := f.NewSheet(RankingsSheet); err != nil {
		return sum, fmt.Errorf("failed to add rankings sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return sum, fmt.Errorf("failed to create header style: %w", err)
	}
	for sheet, header := range map[string][]any{ScoresSheet: scoresHeader, RankingsSheet: rankingsHeader} {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return sum, fmt.Errorf("failed to write %s header: %w", sheet, err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return sum, fmt.Errorf("failed to style %s header: %w", sheet, err)
		}
	}

	players, err := e.repo.Players(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to list players: %w", err)
	}

	row := 2
	for _, player := range players {
		n := 0
		for entry, err := range e.repo.Iter(ctx, player) {
			if err != nil {
				return sum, fmt.Errorf("failed to read scores for %s: %w", player, err)
			}
			if err := writeScore(f, row, player, entry.Score); err != nil {
				return sum, err
			}
			row++
			n++
		}
		if n > 0 {
			sum.Players++
			sum.Scores += n
		}
	}

	standings, err := e.rankings.Rankings(ctx, 0)
	if err != nil {
		return sum, fmt.Errorf("failed to rank players: %w", err)
	}
	for i, s := range standings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []any{
			i + 1,
			s.PlayerID,
			s.Stats.Total,
			s.Stats.Successes,
			s.Stats.WinRate() / 100,
			s.Stats.AvgGuesses,
			s.Stats.HardModeCount,
		}
		if err := f.SetSheetRow(RankingsSheet, cell, &values); err != nil {
			return sum, fmt.Errorf("failed to write ranking %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return sum, fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.InfoContext(ctx, "Exported leaderboard",
		slog.Int("players", sum.Players),
		slog.Int("scores", sum.Scores),
	)
	return sum, nil
}

func writeScore(f *excelize.File, row int, player string, ts wordledomain.TimestampedScore) error {
	guesses := any(int(ts.Score.Guesses))
	if !ts.Score.Success {
		guesses = "X"
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	values := []any{
		player,
		int(ts.Score.Day),
		ts.Score.Success,
		guesses,
		ts.Score.HardMode,
		time.Unix(ts.Timestamp, 0).UTC().Format(time.RFC3339),
		ts.Score.Grid.String(),
	}
	if err := f.SetSheetRow(ScoresSheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write score row %d: %w", row, err)
	}
	return nil
}
