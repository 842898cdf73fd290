package observability

import (
	"io"
	"log/slog"

	wordlemetrics "github.com/Black-And-White-Club/wordle-bot/app/observability/metrics/wordle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Black-And-White-Club/wordle-bot"

// Config selects the logger output.
type Config struct {
	LogLevel  string
	LogFormat string
}

// Observability bundles the logger, tracer and metrics handed to modules.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  wordlemetrics.WordleMetrics
}

// New builds an Observability writing logs to w. Spans go to the global
// otel provider, which is a no-op unless an exporter has been installed.
func New(w io.Writer, cfg Config) Observability {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return Observability{
		Logger:   NewLogger(w, cfg.LogLevel, cfg.LogFormat),
		Tracer:   otel.Tracer(instrumentationName),
		Registry: reg,
		Metrics:  wordlemetrics.NewPrometheus(reg),
	}
}
