package wordledomain

import (
	"cmp"
	"slices"
)

// Stats summarises a player's stored scores.
type Stats struct {
	Total         int
	Successes     int
	AvgGuesses    float64
	HardModeCount int
}

// WinRate returns the share of successful entries in percent.
func (s Stats) WinRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successes) * 100 / float64(s.Total)
}

// StatsFilter narrows which entries are counted. The zero value counts
// everything.
type StatsFilter struct {
	Day          *uint32
	HardModeOnly bool
}

func (f StatsFilter) matches(s Score) bool {
	if f.Day != nil && s.Day != *f.Day {
		return false
	}
	if f.HardModeOnly && !s.HardMode {
		return false
	}
	return true
}

// Tally accumulates scores into Stats. The zero value is ready to use.
type Tally struct {
	Filter StatsFilter

	total     int
	successes int
	hard      int
	guesses   uint64
}

// Add counts s if it passes the filter.
func (t *Tally) Add(s Score) {
	if !t.Filter.matches(s) {
		return
	}
	t.total++
	t.guesses += uint64(s.Guesses)
	if s.Success {
		t.successes++
	}
	if s.HardMode {
		t.hard++
	}
}

// Stats returns the summary, or ErrNoData when nothing was counted.
func (t *Tally) Stats() (Stats, error) {
	if t.total == 0 {
		return Stats{}, ErrNoData
	}
	return Stats{
		Total:         t.total,
		Successes:     t.successes,
		AvgGuesses:    float64(t.guesses) / float64(t.total),
		HardModeCount: t.hard,
	}, nil
}

// Standing is one player's line in the rankings.
type Standing struct {
	PlayerID string
	Stats    Stats
}

// Rank orders standings by win rate, then fewer average guesses, then more
// games played, then player ID.
func Rank(standings []Standing) {
	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Stats.WinRate(), a.Stats.WinRate()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Stats.AvgGuesses, b.Stats.AvgGuesses); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Stats.Total, a.Stats.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
}
