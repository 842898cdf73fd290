package wordleservice

import (
	"context"
	"iter"
	"sort"

	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
)

// ------------------------
// Fake Wordle Repository
// ------------------------

type FakeWordleRepo struct {
	trace []string

	EnsurePartitionFunc func(ctx context.Context, playerID string) error
	UpsertFunc          func(ctx context.Context, playerID string, candidate wordledomain.TimestampedScore) (wordledomain.Outcome, error)
	GetFunc             func(ctx context.Context, playerID string, day uint32) (*wordledomain.TimestampedScore, error)
	IterFunc            func(ctx context.Context, playerID string) iter.Seq2[wordledb.Entry, error]
	IsEmptyFunc         func(ctx context.Context, playerID string) (bool, error)
	PlayersFunc         func(ctx context.Context) ([]string, error)
	FlushFunc           func(ctx context.Context) error
}

func NewFakeWordleRepo() *FakeWordleRepo {
	return &FakeWordleRepo{trace: []string{}}
}

func (f *FakeWordleRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeWordleRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeWordleRepo) EnsurePartition(ctx context.Context, playerID string) error {
	f.record("EnsurePartition")
	if f.EnsurePartitionFunc != nil {
		return f.EnsurePartitionFunc(ctx, playerID)
	}
	return nil
}

func (f *FakeWordleRepo) Upsert(ctx context.Context, playerID string, candidate wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
	f.record("Upsert")
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, playerID, candidate)
	}
	return wordledomain.Inserted, nil
}

func (f *FakeWordleRepo) Get(ctx context.Context, playerID string, day uint32) (*wordledomain.TimestampedScore, error) {
	f.record("Get")
	if f.GetFunc != nil {
		return f.GetFunc(ctx, playerID, day)
	}
	return nil, wordledb.ErrNotFound
}

func (f *FakeWordleRepo) Iter(ctx context.Context, playerID string) iter.Seq2[wordledb.Entry, error] {
	f.record("Iter")
	if f.IterFunc != nil {
		return f.IterFunc(ctx, playerID)
	}
	return func(func(wordledb.Entry, error) bool) {}
}

func (f *FakeWordleRepo) IsEmpty(ctx context.Context, playerID string) (bool, error) {
	f.record("IsEmpty")
	if f.IsEmptyFunc != nil {
		return f.IsEmptyFunc(ctx, playerID)
	}
	return true, nil
}

func (f *FakeWordleRepo) Players(ctx context.Context) ([]string, error) {
	f.record("Players")
	if f.PlayersFunc != nil {
		return f.PlayersFunc(ctx)
	}
	return nil, nil
}

func (f *FakeWordleRepo) Flush(ctx context.Context) error {
	f.record("Flush")
	if f.FlushFunc != nil {
		return f.FlushFunc(ctx)
	}
	return nil
}

// Ensure the fake actually satisfies the interface
var _ wordledb.Repository = (*FakeWordleRepo)(nil)

// withMemory backs the fake's Upsert, Iter and Players with a map that
// follows the earliest-wins rule.
func (f *FakeWordleRepo) withMemory() map[string]map[uint32]wordledomain.TimestampedScore {
	data := map[string]map[uint32]wordledomain.TimestampedScore{}

	f.UpsertFunc = func(_ context.Context, playerID string, c wordledomain.TimestampedScore) (wordledomain.Outcome, error) {
		part, ok := data[playerID]
		if !ok {
			part = map[uint32]wordledomain.TimestampedScore{}
			data[playerID] = part
		}
		cur, ok := part[c.Score.Day]
		switch {
		case !ok:
			part[c.Score.Day] = c
			return wordledomain.Inserted, nil
		case cur.Timestamp > c.Timestamp:
			part[c.Score.Day] = c
			return wordledomain.Replaced, nil
		default:
			return wordledomain.Unchanged, nil
		}
	}
	f.IterFunc = func(_ context.Context, playerID string) iter.Seq2[wordledb.Entry, error] {
		return func(yield func(wordledb.Entry, error) bool) {
			part := data[playerID]
			days := make([]uint32, 0, len(part))
			for d := range part {
				days = append(days, d)
			}
			sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
			for _, d := range days {
				if !yield(wordledb.Entry{Day: d, Score: part[d]}, nil) {
					return
				}
			}
		}
	}
	f.PlayersFunc = func(context.Context) ([]string, error) {
		ids := make([]string, 0, len(data))
		for id := range data {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids, nil
	}
	return data
}

// ------------------------
// Fake History
// ------------------------

type FakeHistory struct {
	messages []wordledomain.Message
	// failAfter, when positive, yields err after that many messages.
	failAfter int
	err       error
	walks     int
}

func (h *FakeHistory) Messages(ctx context.Context) iter.Seq2[wordledomain.Message, error] {
	h.walks++
	return func(yield func(wordledomain.Message, error) bool) {
		for i, m := range h.messages {
			if h.failAfter > 0 && i == h.failAfter {
				yield(wordledomain.Message{}, h.err)
				return
			}
			if !yield(m, nil) {
				return
			}
		}
	}
}

var _ History = (*FakeHistory)(nil)

// HistoryFunc adapts a sequence constructor to History.
type HistoryFunc func(ctx context.Context) iter.Seq2[wordledomain.Message, error]

func (f HistoryFunc) Messages(ctx context.Context) iter.Seq2[wordledomain.Message, error] {
	return f(ctx)
}

var _ History = HistoryFunc(nil)
