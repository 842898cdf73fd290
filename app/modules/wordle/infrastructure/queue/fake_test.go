package wordlequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordlemetrics "github.com/Black-And-White-Club/wordle-bot/app/observability/metrics/wordle"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// ------------------------
// Fake Wordle Service
// ------------------------

type FakeWordleService struct {
	BackfillFunc func(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error)
}

func (f *FakeWordleService) RecordMessage(ctx context.Context, msg wordledomain.Message) (wordleservice.RecordResult, error) {
	return wordleservice.RecordResult{}, nil
}

func (f *FakeWordleService) GetStats(ctx context.Context, playerID string, filter wordledomain.StatsFilter) (*wordledomain.Stats, error) {
	return nil, wordledomain.ErrNoData
}

func (f *FakeWordleService) Backfill(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error) {
	if f.BackfillFunc != nil {
		return f.BackfillFunc(ctx, channelID, history)
	}
	return &wordleservice.BackfillResult{ChannelID: channelID}, nil
}

func (f *FakeWordleService) Rankings(ctx context.Context, limit int) ([]wordledomain.Standing, error) {
	return nil, nil
}

func (f *FakeWordleService) ResolveDay(input string, now time.Time) (uint32, error) {
	return 0, wordleservice.ErrInvalidDay
}

var _ wordleservice.Service = (*FakeWordleService)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type published struct {
	topic string
	msg   *message.Message
}

type FakePublisher struct {
	mu  sync.Mutex
	out []published
	err error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, m := range msgs {
		f.out = append(f.out, published{topic: topic, msg: m})
	}
	return nil
}

func (f *FakePublisher) Close() error { return nil }

var _ message.Publisher = (*FakePublisher)(nil)

// ------------------------
// Fake Inserter
// ------------------------

type FakeInserter struct {
	inserted []river.JobArgs
	dup      bool
	err      error
}

func (f *FakeInserter) Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, args)
	return &rivertype.JobInsertResult{
		Job:                      &rivertype.JobRow{ID: int64(len(f.inserted))},
		UniqueSkippedAsDuplicate: f.dup,
	}, nil
}

var _ jobInserter = (*FakeInserter)(nil)

var errQueueDown = errors.New("queue down")

func newTestQueue(ins *FakeInserter) *Service {
	return &Service{
		inserter: ins,
		logger:   discardLogger(),
		metrics:  wordlemetrics.NewNoop(),
	}
}
