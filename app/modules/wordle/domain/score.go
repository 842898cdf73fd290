package wordledomain

import (
	"errors"
	"fmt"
)

// MaxGuesses is the number of rows in a full board.
const MaxGuesses = 6

var (
	// ErrInvalidScore is returned by Validate for a score that breaks the
	// grid/guess invariants.
	ErrInvalidScore = errors.New("invalid score")
	// ErrNoData signals an aggregation over zero entries.
	ErrNoData = errors.New("no scores")
)

// Score is a parsed result report.
type Score struct {
	Day      uint32
	Success  bool
	Guesses  uint8
	HardMode bool
	Grid     Grid
}

// TimestampedScore is the persisted unit: the score together with the
// creation time of the message it came from, in unix seconds.
type TimestampedScore struct {
	Timestamp int64
	Score     Score
}

// Validate checks the structural invariants of a score.
func (s Score) Validate() error {
	if s.Day == 0 {
		return fmt.Errorf("%w: day 0", ErrInvalidScore)
	}
	if s.Guesses < 1 || s.Guesses > MaxGuesses {
		return fmt.Errorf("%w: guesses %d out of range", ErrInvalidScore, s.Guesses)
	}
	if len(s.Grid) != int(s.Guesses) {
		return fmt.Errorf("%w: %d rows for %d guesses", ErrInvalidScore, len(s.Grid), s.Guesses)
	}
	for i, row := range s.Grid {
		for _, l := range row {
			if !l.Valid() {
				return fmt.Errorf("%w: row %d has unknown letter %d", ErrInvalidScore, i+1, uint8(l))
			}
		}
	}
	return nil
}

// Equal compares two scores field by field, including the grid.
func (s Score) Equal(o Score) bool {
	if s.Day != o.Day || s.Success != o.Success || s.Guesses != o.Guesses || s.HardMode != o.HardMode {
		return false
	}
	if len(s.Grid) != len(o.Grid) {
		return false
	}
	for i := range s.Grid {
		if s.Grid[i] != o.Grid[i] {
			return false
		}
	}
	return true
}

// Header renders the score's header line, e.g. "Wordle 224 4/6*".
func (s Score) Header() string {
	g := "X"
	if s.Success {
		g = fmt.Sprintf("%d", s.Guesses)
	}
	h := fmt.Sprintf("Wordle %d %s/%d", s.Day, g, MaxGuesses)
	if s.HardMode {
		h += "*"
	}
	return h
}

// String renders the score the way the game shares it.
func (s Score) String() string {
	return s.Header() + "\n" + s.Grid.String()
}
