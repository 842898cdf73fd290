package wordledomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(day uint32, success bool, guesses uint8, hard bool) Score {
	return Score{Day: day, Success: success, Guesses: guesses, HardMode: hard, Grid: make(Grid, guesses)}
}

func TestTally(t *testing.T) {
	day2 := uint32(2)
	entries := []Score{
		score(1, true, 3, false),
		score(2, false, 6, false),
	}

	tests := []struct {
		name    string
		filter  StatsFilter
		scores  []Score
		want    Stats
		wantErr error
	}{
		{
			name:   "failures count toward the average",
			scores: entries,
			want:   Stats{Total: 2, Successes: 1, AvgGuesses: 4.5, HardModeCount: 0},
		},
		{
			name:   "day filter",
			filter: StatsFilter{Day: &day2},
			scores: entries,
			want:   Stats{Total: 1, Successes: 0, AvgGuesses: 6, HardModeCount: 0},
		},
		{
			name:    "day filter without match",
			filter:  StatsFilter{Day: func() *uint32 { d := uint32(9); return &d }()},
			scores:  entries,
			wantErr: ErrNoData,
		},
		{
			name:   "hard mode only",
			filter: StatsFilter{HardModeOnly: true},
			scores: append([]Score{score(3, true, 2, true)}, entries...),
			want:   Stats{Total: 1, Successes: 1, AvgGuesses: 2, HardModeCount: 1},
		},
		{
			name:    "empty",
			wantErr: ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := Tally{Filter: tt.filter}
			for _, s := range tt.scores {
				tally.Add(s)
			}
			got, err := tally.Stats()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRank(t *testing.T) {
	standings := []Standing{
		{PlayerID: "c", Stats: Stats{Total: 4, Successes: 2, AvgGuesses: 4}},
		{PlayerID: "a", Stats: Stats{Total: 2, Successes: 2, AvgGuesses: 4}},
		{PlayerID: "b", Stats: Stats{Total: 2, Successes: 2, AvgGuesses: 3}},
		{PlayerID: "d", Stats: Stats{Total: 4, Successes: 4, AvgGuesses: 4}},
	}
	Rank(standings)

	ids := make([]string, len(standings))
	for i, s := range standings {
		ids[i] = s.PlayerID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.InDelta(t, 50.0, standings[3].Stats.WinRate(), 0.001)
}
