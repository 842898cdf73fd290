package wordlehandlers

import (
	"context"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
)

// ------------------------
// Fake Wordle Service
// ------------------------

type FakeWordleService struct {
	trace []string

	RecordMessageFunc func(ctx context.Context, msg wordledomain.Message) (wordleservice.RecordResult, error)
	GetStatsFunc      func(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (*wordledomain.Stats, error)
	BackfillFunc      func(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error)
	RankingsFunc      func(ctx context.Context, limit int) ([]wordledomain.Standing, error)
	ResolveDayFunc    func(input string, now time.Time) (uint32, error)
}

func NewFakeWordleService() *FakeWordleService {
	return &FakeWordleService{
		trace: []string{},
	}
}

func (f *FakeWordleService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeWordleService) RecordMessage(ctx context.Context, msg wordledomain.Message) (wordleservice.RecordResult, error) {
	f.record("RecordMessage")
	if f.RecordMessageFunc != nil {
		return f.RecordMessageFunc(ctx, msg)
	}
	return wordleservice.RecordResult{}, nil
}

func (f *FakeWordleService) GetStats(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (*wordledomain.Stats, error) {
	f.record("GetStats")
	if f.GetStatsFunc != nil {
		return f.GetStatsFunc(ctx, playerID, filter)
	}
	return nil, wordledomain.ErrNoData
}

func (f *FakeWordleService) Backfill(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error) {
	f.record("Backfill")
	if f.BackfillFunc != nil {
		return f.BackfillFunc(ctx, channelID, history)
	}
	return &wordleservice.BackfillResult{ChannelID: channelID}, nil
}

func (f *FakeWordleService) Rankings(ctx context.Context, limit int) ([]wordledomain.Standing, error) {
	f.record("Rankings")
	if f.RankingsFunc != nil {
		return f.RankingsFunc(ctx, limit)
	}
	return nil, nil
}

func (f *FakeWordleService) ResolveDay(input string, now time.Time) (uint32, error) {
	f.record("ResolveDay")
	if f.ResolveDayFunc != nil {
		return f.ResolveDayFunc(input, now)
	}
	return 0, wordleservice.ErrInvalidDay
}

// --- Accessors for assertions ---

func (f *FakeWordleService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ wordleservice.Service = (*FakeWordleService)(nil)

// ------------------------
// Fake Backfill Runner
// ------------------------

type FakeBackfillRunner struct {
	calls []*wordleevents.BackfillRequestedPayloadV1

	RunBackfillFunc func(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error)
}

func (f *FakeBackfillRunner) RunBackfill(ctx context.Context, payload *wordleevents.BackfillRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	f.calls = append(f.calls, payload)
	if f.RunBackfillFunc != nil {
		return f.RunBackfillFunc(ctx, payload)
	}
	return nil, nil
}

var _ BackfillRunner = (*FakeBackfillRunner)(nil)
