package wordle_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/wordle-bot/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func skipUnlessContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func startPostgres(t *testing.T) string {
	t.Helper()
	skipUnlessContainers(t)

	ctx := context.Background()
	c, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		t.Fatalf("postgres: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	return dsn
}

func startNATS(t *testing.T) string {
	t.Helper()
	skipUnlessContainers(t)

	ctx := context.Background()
	c, url, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		t.Fatalf("nats: %v", err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
	return url
}

const (
	solvedIn2 = "Wordle 213 2/6\n🟨⬛⬛⬛⬛\n🟩🟩🟩🟩🟩"
	solvedIn1 = "Wordle 214 1/6*\n🟩🟩🟩🟩🟩"
)
