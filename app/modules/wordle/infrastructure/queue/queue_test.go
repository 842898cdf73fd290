package wordlequeue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/attr"
	"github.com/Black-And-White-Club/wordle-bot/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noHistory(string) wordleservice.History { return nil }

func TestBackfillJob_InsertOpts(t *testing.T) {
	job := BackfillJob{ChannelID: "c1"}
	opts := job.InsertOpts()

	assert.Equal(t, "wordle_backfill", job.Kind())
	assert.Equal(t, QueueName, opts.Queue)
	assert.Equal(t, 1, opts.MaxAttempts)
	assert.True(t, opts.UniqueOpts.ByArgs)
	assert.Equal(t, 10*time.Minute, opts.UniqueOpts.ByPeriod)
}

func TestBackfillWorker_Work(t *testing.T) {
	tests := []struct {
		name        string
		args        BackfillJob
		backfill    func(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error)
		publishErr  error
		wantTopic   string
		wantContent string
		wantStatus  string
		wantErr     bool
	}{
		{
			name: "publishes summary to reply topic",
			args: BackfillJob{ChannelID: "c1", InteractionID: "i1", ReplyTo: "_INBOX.1", CorrelationID: "corr"},
			backfill: func(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error) {
				return &wordleservice.BackfillResult{ChannelID: channelID, Scanned: 3, Elapsed: time.Second}, nil
			},
			wantTopic:   "_INBOX.1",
			wantContent: "Parsed 3 messages in 1.0s\nNo scores to add or update in <#c1>",
			wantStatus:  wordleevents.BackfillStatusCompleted,
		},
		{
			name:        "defaults to completed topic",
			args:        BackfillJob{ChannelID: "c1"},
			wantTopic:   wordleevents.BackfillCompletedV1,
			wantContent: "Parsed 0 messages in 0.0s\nNo scores to add or update in <#c1>",
			wantStatus:  wordleevents.BackfillStatusCompleted,
		},
		{
			name: "failed backfill is reported, not retried",
			args: BackfillJob{ChannelID: "c1"},
			backfill: func(ctx context.Context, channelID string, history wordleservice.History) (*wordleservice.BackfillResult, error) {
				return &wordleservice.BackfillResult{ChannelID: channelID}, errors.New("gateway timeout")
			},
			wantTopic:   wordleevents.BackfillCompletedV1,
			wantContent: "Could not complete the request, try again later",
			wantStatus:  wordleevents.BackfillStatusFailed,
		},
		{
			name:       "publish failure fails the job",
			args:       BackfillJob{ChannelID: "c1"},
			publishErr: errors.New("nats down"),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &FakePublisher{err: tt.publishErr}
			worker := NewBackfillWorker(&FakeWordleService{BackfillFunc: tt.backfill}, noHistory, pub, discardLogger())

			err := worker.Work(context.Background(), &river.Job[BackfillJob]{Args: tt.args})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, pub.out, 1)
			assert.Equal(t, tt.wantTopic, pub.out[0].topic)
			assert.Equal(t, tt.args.CorrelationID, middleware.MessageCorrelationID(pub.out[0].msg))

			var got wordleevents.BackfillCompletedPayloadV1
			require.NoError(t, json.Unmarshal(pub.out[0].msg.Payload, &got))
			assert.Equal(t, tt.wantContent, got.Content)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.NotContains(t, string(pub.out[0].msg.Payload), "gateway timeout")
			assert.NotEmpty(t, got.RunID)
		})
	}
}

func TestBackfillWorker_Timeout(t *testing.T) {
	worker := NewBackfillWorker(&FakeWordleService{}, noHistory, &FakePublisher{}, discardLogger())
	assert.Equal(t, backfillTimeout, worker.Timeout(&river.Job[BackfillJob]{}))
}

func TestService_RunBackfill(t *testing.T) {
	payload := &wordleevents.BackfillRequestedPayloadV1{InteractionID: "i1", ChannelID: "c1", RequestedBy: "u1"}

	t.Run("enqueues with reply topic and correlation", func(t *testing.T) {
		ins := &FakeInserter{}
		ctx := attr.WithCorrelationID(context.Background(), "corr")
		ctx = context.WithValue(ctx, handlerwrapper.CtxKeyReplyTo, "_INBOX.2")

		results, err := newTestQueue(ins).RunBackfill(ctx, payload)
		require.NoError(t, err)
		assert.Empty(t, results)
		require.Len(t, ins.inserted, 1)
		assert.Equal(t, BackfillJob{
			ChannelID:     "c1",
			InteractionID: "i1",
			RequestedBy:   "u1",
			ReplyTo:       "_INBOX.2",
			CorrelationID: "corr",
		}, ins.inserted[0])
	})

	t.Run("duplicate is answered immediately", func(t *testing.T) {
		results, err := newTestQueue(&FakeInserter{dup: true}).RunBackfill(context.Background(), payload)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, wordleevents.BackfillCompletedV1, results[0].Topic)
		out := results[0].Payload.(*wordleevents.BackfillCompletedPayloadV1)
		assert.Equal(t, "A load is already running for <#c1>", out.Content)
		assert.Equal(t, wordleevents.BackfillStatusRunning, out.Status)
	})

	t.Run("insert failure is returned", func(t *testing.T) {
		_, err := newTestQueue(&FakeInserter{err: errQueueDown}).RunBackfill(context.Background(), payload)
		assert.ErrorIs(t, err, errQueueDown)
	})
}
