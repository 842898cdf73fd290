// Package wordleevents defines the topics and JSON payloads exchanged with
// the chat gateway.
package wordleevents

import "time"

const (
	// MessageReceivedV1 carries a chat message that may contain a score.
	MessageReceivedV1 = "wordle.message.received.v1"
	// ScoreRecordedV1 is emitted when a message changed the leaderboard.
	ScoreRecordedV1 = "wordle.score.recorded.v1"

	StatsRequestedV1 = "wordle.stats.requested.v1"
	StatsResponseV1  = "wordle.stats.response.v1"

	BackfillRequestedV1 = "wordle.backfill.requested.v1"
	BackfillCompletedV1 = "wordle.backfill.completed.v1"

	RankingsRequestedV1 = "wordle.rankings.requested.v1"
	RankingsResponseV1  = "wordle.rankings.response.v1"

	// HistoryRequestV1 is the request/reply subject served by the gateway
	// for paging through channel history.
	HistoryRequestV1 = "wordle.history.request.v1"
)

// MessageReceivedPayloadV1 is a chat message as seen by the gateway.
type MessageReceivedPayloadV1 struct {
	MessageID string    `json:"message_id"`
	ChannelID string    `json:"channel_id"`
	AuthorID  string    `json:"author_id"`
	AuthorBot bool      `json:"author_bot,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ScoreRecordedPayloadV1 lets the gateway acknowledge a stored score.
type ScoreRecordedPayloadV1 struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	PlayerID  string `json:"player_id"`
	Day       uint32 `json:"day"`
	Outcome   string `json:"outcome"`
}

// StatsRequestedPayloadV1 is the stats command. User defaults to the
// requester; Day accepts a puzzle number or a date.
type StatsRequestedPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	RequestedBy   string `json:"requested_by"`
	User          string `json:"user,omitempty"`
	Day           string `json:"day,omitempty"`
	Hard          bool   `json:"hard,omitempty"`
}

// StatsResponsePayloadV1 carries the rendered reply.
type StatsResponsePayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	Content       string `json:"content"`
	Found         bool   `json:"found"`
}

// BackfillRequestedPayloadV1 is the load command.
type BackfillRequestedPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	ChannelID     string `json:"channel_id"`
	RequestedBy   string `json:"requested_by"`
}

// Backfill completion statuses. Failure details stay in the bot's logs under
// the run ID.
const (
	BackfillStatusCompleted = "completed"
	BackfillStatusFailed    = "failed"
	BackfillStatusRunning   = "already_running"
)

// BackfillCompletedPayloadV1 reports the load summary.
type BackfillCompletedPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	ChannelID     string `json:"channel_id"`
	RunID         string `json:"run_id"`
	Content       string `json:"content"`
	Scanned       int    `json:"scanned"`
	Stored        int    `json:"stored"`
	Players       int    `json:"players"`
	Failed        int    `json:"failed"`
	Status        string `json:"status"`
}

// RankingsRequestedPayloadV1 asks for the top players.
type RankingsRequestedPayloadV1 struct {
	InteractionID string `json:"interaction_id"`
	Limit         int    `json:"limit,omitempty"`
}

// RankingEntryV1 is one line of the rankings.
type RankingEntryV1 struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	Played     int     `json:"played"`
	Won        int     `json:"won"`
	WinRate    float64 `json:"win_rate"`
	AvgGuesses float64 `json:"avg_guesses"`
}

// RankingsResponsePayloadV1 carries the ordered rankings and a rendered reply.
type RankingsResponsePayloadV1 struct {
	InteractionID string           `json:"interaction_id"`
	Entries       []RankingEntryV1 `json:"entries"`
	Content       string           `json:"content"`
}

// HistoryPageRequestV1 asks the gateway for messages older than Before,
// newest first. An empty Before starts at the newest message.
type HistoryPageRequestV1 struct {
	ChannelID string `json:"channel_id"`
	Before    string `json:"before,omitempty"`
	Limit     int    `json:"limit"`
}

// HistoryPageResponseV1 is one page of history. An empty page ends the walk.
type HistoryPageResponseV1 struct {
	Messages []MessageReceivedPayloadV1 `json:"messages"`
	Error    string                     `json:"error,omitempty"`
}
