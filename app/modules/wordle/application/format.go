package wordleservice

import (
	"fmt"
	"strings"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
)

// FormatStats renders the stats reply for a player.
func FormatStats(playerID string, s wordledomain.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Wordle stats for <@%s>\n", playerID)
	fmt.Fprintf(&b, "Played: %d\n", s.Total)
	fmt.Fprintf(&b, "Won: %d (%.1f%%)\n", s.Successes, s.WinRate())
	fmt.Fprintf(&b, "Average guesses: %.2f\n", s.AvgGuesses)
	fmt.Fprintf(&b, "Hard mode: %d", s.HardModeCount)
	return b.String()
}

// FormatNoStats is the reply when a player has nothing stored.
func FormatNoStats(playerID string) string {
	return fmt.Sprintf("No Wordle scores found for <@%s>", playerID)
}

// FormatBackfill renders the load summary.
func FormatBackfill(r BackfillResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Parsed %d messages in %s\n", r.Scanned, FormatElapsed(r.Elapsed))
	if r.Stored() == 0 {
		fmt.Fprintf(&b, "No scores to add or update in <#%s>", r.ChannelID)
	} else {
		fmt.Fprintf(&b, "Loaded %d %s from %d %s in <#%s>",
			r.Stored(), plural(r.Stored(), "score"),
			r.Players, plural(r.Players, "user"),
			r.ChannelID)
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, "\n%d %s could not be stored", r.Failed, plural(r.Failed, "message"))
	}
	return b.String()
}

// FormatRankings renders the top players, one per line.
func FormatRankings(standings []wordledomain.Standing) string {
	if len(standings) == 0 {
		return "No Wordle scores yet"
	}
	var b strings.Builder
	b.WriteString("Wordle leaderboard")
	for i, s := range standings {
		fmt.Fprintf(&b, "\n%d. <@%s> won %d/%d (%.1f%%), avg %.2f",
			i+1, s.PlayerID, s.Stats.Successes, s.Stats.Total, s.Stats.WinRate(), s.Stats.AvgGuesses)
	}
	return b.String()
}

// FormatElapsed renders a duration as "1m 5s" or "4.2s".
func FormatElapsed(d time.Duration) string {
	if d >= time.Minute {
		return fmt.Sprintf("%dm %ds", int(d/time.Minute), int((d%time.Minute)/time.Second))
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
