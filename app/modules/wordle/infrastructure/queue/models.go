package wordlequeue

import (
	"time"

	"github.com/riverqueue/river"
)

const (
	// QueueName is the river queue backfill jobs run on.
	QueueName = "wordle"

	backfillUniquePeriod = 10 * time.Minute
)

// BackfillJob loads a channel's history into the leaderboard. Only
// ChannelID takes part in uniqueness, so repeated load commands for the
// same channel collapse into one job.
type BackfillJob struct {
	ChannelID     string `json:"channel_id" river:"unique"`
	InteractionID string `json:"interaction_id"`
	RequestedBy   string `json:"requested_by"`
	ReplyTo       string `json:"reply_to,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Kind returns the job type identifier for River
func (BackfillJob) Kind() string { return "wordle_backfill" }

// InsertOpts returns the default insert options for backfill jobs.
func (BackfillJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 1,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: backfillUniquePeriod,
		},
	}
}
