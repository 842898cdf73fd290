package wordledb

import (
	"time"

	"github.com/uptrace/bun"
)

// Player is a partition in the leaderboard.
type Player struct {
	bun.BaseModel `bun:"table:wordle_players,alias:wp"`

	PlayerID  string    `bun:"player_id,pk"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// ScoreRow is a stored score. DayKey is the big-endian encoded day so that
// the primary key orders by day. Value holds the encoded TimestampedScore;
// Day and ReportedAt are copies used for filtering.
type ScoreRow struct {
	bun.BaseModel `bun:"table:wordle_scores,alias:ws"`

	PlayerID   string    `bun:"player_id,pk"`
	DayKey     []byte    `bun:"day_key,pk"`
	Day        int64     `bun:"day,notnull"`
	ReportedAt int64     `bun:"reported_at,notnull"`
	Value      []byte    `bun:"value,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}
