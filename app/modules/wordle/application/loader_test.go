package wordleservice

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"testing"
	"time"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msgAt(id, author, content string, at time.Time) wordledomain.Message {
	return wordledomain.Message{ID: id, ChannelID: "c1", AuthorID: author, Content: content, Timestamp: at}
}

func TestLoader_Load(t *testing.T) {
	cutoff := testCalendar.Cutoff(24 * time.Hour)

	history := &FakeHistory{messages: []wordledomain.Message{
		// newest first
		msgAt("9", "ann", report(301, 2, false), postedOn(301)),
		msgAt("8", "ann", "lol", postedOn(301)),
		msgAt("7", "bob", report(300, 4, true), postedOn(300)),
		{ID: "6", AuthorID: "bot", AuthorBot: true, Content: report(300, 1, false), Timestamp: postedOn(300)},
		msgAt("5", "ann", report(300, 3, false), postedOn(300).Add(time.Hour)),
		msgAt("4", "ann", report(300, 5, false), postedOn(300)),
		msgAt("3", "cat", report(10, 3, false), postedOn(300)),
		msgAt("2", "ann", report(1, 6, false), cutoff.Add(time.Minute)),
		msgAt("1", "ann", report(1, 1, false), cutoff.Add(-time.Minute)),
	}}

	repo := NewFakeWordleRepo()
	data := repo.withMemory()

	policy := wordledomain.DayPolicy{Enabled: true, Calendar: testCalendar, Tolerance: 24 * time.Hour}
	loader := NewLoader(repo, policy, cutoff, discardLogger())

	res, err := loader.Load(context.Background(), history)
	require.NoError(t, err)

	assert.Equal(t, 8, res.Scanned, "message 1 is before the cutoff")
	assert.Equal(t, 4, res.Inserted)
	assert.Equal(t, 1, res.Replaced, "message 4 is earlier than message 5")
	assert.Equal(t, 0, res.Unchanged)
	assert.Equal(t, 2, res.Ignored)
	assert.Equal(t, 1, res.OutOfWindow, "day 10 posted on day 300")
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, res.Players)
	assert.Equal(t, 5, res.Stored())

	assert.Equal(t, uint8(5), data["ann"][300].Score.Guesses)
	assert.Equal(t, postedOn(300).Unix(), data["ann"][300].Timestamp)
	assert.Contains(t, data["ann"], uint32(1))
	assert.Equal(t, uint8(6), data["ann"][1].Score.Guesses)
	assert.NotContains(t, data, "cat")
}

func TestLoader_IdempotentRerun(t *testing.T) {
	history := &FakeHistory{messages: []wordledomain.Message{
		msgAt("2", "ann", report(300, 2, false), postedOn(300)),
		msgAt("1", "bob", report(300, 4, false), postedOn(300)),
	}}
	repo := NewFakeWordleRepo()
	repo.withMemory()
	loader := NewLoader(repo, wordledomain.DayPolicy{}, testCalendar.Cutoff(0), discardLogger())

	first, err := loader.Load(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := loader.Load(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stored())
	assert.Equal(t, 2, second.Unchanged)
	assert.Equal(t, 0, second.Players)
	assert.Equal(t, 2, history.walks)
}

func TestLoader_PerItemFailuresAreCounted(t *testing.T) {
	history := &FakeHistory{messages: []wordledomain.Message{
		msgAt("3", "ann", report(300, 2, false), postedOn(300)),
		msgAt("2", "bad", report(300, 3, false), postedOn(300)),
		msgAt("1", "bob", report(300, 4, false), postedOn(300)),
	}}
	repo := NewFakeWordleRepo()
	repo.UpsertFunc = func(_ context.Context, playerID string, _ wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
		if playerID == "bad" {
			return wordledomain.Unchanged, errors.New("write failed")
		}
		return wordledomain.Inserted, nil
	}

	res, err := NewLoader(repo, wordledomain.DayPolicy{}, testCalendar.Cutoff(0), discardLogger()).Load(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Scanned)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, res.Players)
}

func TestLoader_UnusableItemsDoNotEndWalk(t *testing.T) {
	history := HistoryFunc(func(context.Context) iter.Seq2[wordledomain.Message, error] {
		return func(yield func(wordledomain.Message, error) bool) {
			_ = yield(msgAt("4", "ann", report(300, 2, false), postedOn(300)), nil) &&
				yield(wordledomain.Message{}, fmt.Errorf("line 3: %w", wordledomain.ErrMalformedMessage)) &&
				yield(wordledomain.Message{ID: "2", AuthorID: "ann", Content: report(299, 5, false)}, nil) &&
				yield(msgAt("1", "bob", report(299, 4, false), postedOn(299)), nil)
		}
	})
	repo := NewFakeWordleRepo()
	data := repo.withMemory()

	res, err := NewLoader(repo, wordledomain.DayPolicy{}, testCalendar.Cutoff(24*time.Hour), discardLogger()).Load(context.Background(), history)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Scanned)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Failed)
	assert.NotContains(t, data["ann"], uint32(299), "undated report must not be stored")
	assert.Contains(t, data["bob"], uint32(299), "walk continues past undated report")
}

func TestLoader_HistoryErrorStopsWalk(t *testing.T) {
	boom := errors.New("gateway gone")
	history := &FakeHistory{
		messages: []wordledomain.Message{
			msgAt("3", "ann", report(300, 2, false), postedOn(300)),
			msgAt("2", "bob", report(300, 3, false), postedOn(300)),
			msgAt("1", "cat", report(300, 4, false), postedOn(300)),
		},
		failAfter: 2,
		err:       boom,
	}
	repo := NewFakeWordleRepo()

	res, err := NewLoader(repo, wordledomain.DayPolicy{}, testCalendar.Cutoff(0), discardLogger()).Load(context.Background(), history)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, res.Scanned)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 2, res.Players)
}

func TestLoader_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	history := &FakeHistory{messages: []wordledomain.Message{
		msgAt("3", "ann", report(300, 2, false), postedOn(300)),
		msgAt("2", "bob", report(300, 3, false), postedOn(300)),
		msgAt("1", "cat", report(300, 4, false), postedOn(300)),
	}}
	repo := NewFakeWordleRepo()
	repo.UpsertFunc = func(context.Context, string, wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
		cancel()
		return wordledomain.Inserted, nil
	}

	res, err := NewLoader(repo, wordledomain.DayPolicy{}, testCalendar.Cutoff(0), discardLogger()).Load(ctx, history)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, res.Scanned)
	assert.Equal(t, 1, res.Inserted)
}

func TestWordleService_BackfillFlushesAndFormats(t *testing.T) {
	repo := NewFakeWordleRepo()
	repo.withMemory()
	history := &FakeHistory{messages: []wordledomain.Message{
		msgAt("2", "ann", report(300, 2, false), postedOn(300)),
		msgAt("1", "bob", report(300, 4, false), postedOn(300)),
	}}

	svc := newTestService(repo, wordledomain.DayPolicy{})
	clock := time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(1500 * time.Millisecond)
		return clock
	}

	res, err := svc.Backfill(context.Background(), "c1", history)
	require.NoError(t, err)
	assert.Equal(t, "c1", res.ChannelID)
	assert.Equal(t, []string{"Upsert", "Upsert", "Flush"}, repo.Trace())
	assert.Equal(t, "Parsed 2 messages in 1.5s\nLoaded 2 scores from 2 users in <#c1>", FormatBackfill(*res))
}

func TestWordleService_BackfillFlushesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := NewFakeWordleRepo()
	repo.UpsertFunc = func(context.Context, string, wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
		cancel()
		return wordledomain.Inserted, nil
	}
	history := &FakeHistory{messages: []wordledomain.Message{
		msgAt("2", "ann", report(300, 2, false), postedOn(300)),
		msgAt("1", "bob", report(300, 4, false), postedOn(300)),
	}}

	res, err := newTestService(repo, wordledomain.DayPolicy{}).Backfill(ctx, "c1", history)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, []string{"Upsert", "Flush"}, repo.Trace())
}
