package wordleservice

import (
	"io"
	"log/slog"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordlemetrics "github.com/Black-And-White-Club/wordle-bot/app/observability/metrics/wordle"
	"go.opentelemetry.io/otel/trace/noop"
)

var testCalendar = wordledomain.Calendar{Epoch: wordledomain.DefaultEpoch}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo *FakeWordleRepo, policy wordledomain.DayPolicy) *WordleService {
	policy.Calendar = testCalendar
	return NewWordleService(
		repo,
		discardLogger(),
		wordlemetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		Config{Calendar: testCalendar, Policy: policy, Grace: 24 * time.Hour},
	)
}

// report renders a shareable score for day with the given guesses; zero
// guesses renders a failed board.
func report(day uint32, guesses uint8, hard bool) string {
	s := wordledomain.Score{Day: day, Success: guesses != 0, Guesses: guesses, HardMode: hard}
	if guesses == 0 {
		s.Guesses = wordledomain.MaxGuesses
	}
	s.Grid = make(wordledomain.Grid, s.Guesses)
	for i := range s.Grid {
		s.Grid[i] = wordledomain.Row{wordledomain.Partial, wordledomain.Incorrect, wordledomain.Incorrect, wordledomain.Incorrect, wordledomain.Incorrect}
	}
	if s.Success {
		s.Grid[s.Guesses-1] = wordledomain.Row{wordledomain.Correct, wordledomain.Correct, wordledomain.Correct, wordledomain.Correct, wordledomain.Correct}
	}
	return s.String()
}

// postedOn returns a time during puzzle day d.
func postedOn(d uint32) time.Time {
	return testCalendar.Start(d).Add(12 * time.Hour)
}
