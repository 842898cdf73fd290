package wordle_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	wordleevents "github.com/Black-And-White-Club/wordle-bot/app/events/wordle"
	wordleservice "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/application"
	wordledomain "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/domain"
	wordlehistory "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/history"
	wordlequeue "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/queue"
	wordledb "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories"
	wordlemigrations "github.com/Black-And-White-Club/wordle-bot/app/modules/wordle/infrastructure/repositories/migrations"
	wordlemetrics "github.com/Black-And-White-Club/wordle-bot/app/observability/metrics/wordle"
	"github.com/Black-And-White-Club/wordle-bot/internal/db/bundb"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.opentelemetry.io/otel/trace/noop"
)

func migratedDB(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := bundb.Open(ctx, bundb.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := migrate.NewMigrator(db, wordlemigrations.Migrations)
	require.NoError(t, m.Init(ctx))
	_, err = m.Migrate(ctx)
	require.NoError(t, err)
	return db
}

func parsed(t *testing.T, text string, at time.Time) wordledomain.TimestampedScore {
	t.Helper()
	s, _, err := wordledomain.Parse(text)
	require.NoError(t, err)
	return wordledomain.TimestampedScore{Timestamp: at.Unix(), Score: s}
}

func TestPostgresRepository(t *testing.T) {
	dsn := startPostgres(t)
	repo := wordledb.NewRepository(migratedDB(t, dsn))
	ctx := context.Background()

	base := time.Date(2022, 1, 18, 9, 0, 0, 0, time.UTC)

	out, err := repo.Upsert(ctx, "u1", parsed(t, solvedIn2, base))
	require.NoError(t, err)
	assert.Equal(t, wordledomain.Inserted, out)

	out, err = repo.Upsert(ctx, "u1", parsed(t, solvedIn2, base.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, wordledomain.Unchanged, out)

	out, err = repo.Upsert(ctx, "u1", parsed(t, solvedIn2, base.Add(-time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, wordledomain.Replaced, out)

	got, err := repo.Get(ctx, "u1", 213)
	require.NoError(t, err)
	assert.Equal(t, base.Add(-time.Hour).Unix(), got.Timestamp)

	t.Run("concurrent upserts keep the earliest", func(t *testing.T) {
		candidates := make([]wordledomain.TimestampedScore, 20)
		for i := range candidates {
			candidates[i] = parsed(t, solvedIn1, base.Add(time.Duration(20-i)*time.Minute))
		}

		var wg sync.WaitGroup
		for _, c := range candidates {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Upsert(ctx, "u2", c)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.Get(ctx, "u2", 214)
		require.NoError(t, err)
		assert.Equal(t, base.Add(time.Minute).Unix(), got.Timestamp)
	})

	players, err := repo.Players(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, players)
	require.NoError(t, repo.Flush(ctx))
}

func TestRiverBackfill(t *testing.T) {
	dsn := startPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo := wordledb.NewRepository(migratedDB(t, dsn))
	require.NoError(t, wordlequeue.Migrate(ctx, dsn, discardLogger()))

	historyPath := filepath.Join(t.TempDir(), "history.jsonl")
	line, err := json.Marshal(wordleevents.MessageReceivedPayloadV1{
		MessageID: "1", ChannelID: "c1", AuthorID: "u1", Content: solvedIn2,
		Timestamp: time.Date(2022, 1, 18, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(historyPath, append(line, '\n'), 0o600))

	service := wordleservice.NewWordleService(repo, discardLogger(), wordlemetrics.NewNoop(), noop.NewTracerProvider().Tracer("test"), wordleservice.Config{})
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	completed, err := pubSub.Subscribe(ctx, wordleevents.BackfillCompletedV1)
	require.NoError(t, err)

	worker := wordlequeue.NewBackfillWorker(service, func(string) wordleservice.History {
		return wordlehistory.NewFileHistory(historyPath)
	}, pubSub, discardLogger())
	queue, err := wordlequeue.NewService(ctx, dsn, 1, worker, discardLogger(), wordlemetrics.NewNoop())
	require.NoError(t, err)
	require.NoError(t, queue.Start(ctx))
	defer func() { _ = queue.Stop(context.Background()) }()

	req := &wordleevents.BackfillRequestedPayloadV1{InteractionID: "i1", ChannelID: "c1", RequestedBy: "admin"}
	results, err := queue.RunBackfill(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, results)

	select {
	case msg := <-completed:
		msg.Ack()
		var out wordleevents.BackfillCompletedPayloadV1
		require.NoError(t, json.Unmarshal(msg.Payload, &out))
		assert.Equal(t, "i1", out.InteractionID)
		assert.Equal(t, 1, out.Stored)
		assert.Contains(t, out.Content, "Loaded 1 score from 1 user in <#c1>")
	case <-ctx.Done():
		t.Fatal("backfill job did not complete")
	}

	// Same channel inside the unique period is answered without a new job.
	results, err = queue.RunBackfill(ctx, req)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A load is already running for <#c1>", results[0].Payload.(*wordleevents.BackfillCompletedPayloadV1).Content)

	require.NoError(t, queue.HealthCheck(ctx))
}
