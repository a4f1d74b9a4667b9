// ABOUTME: Prometheus counters for queries, assistant fallbacks and ingestion.
// ABOUTME: Uses its own registry and can expose it on an optional /metrics listener.
package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "healthcoach"

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder holds the process metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	queries       *prometheus.CounterVec
	queryDuration *prometheus.HistogramVec
	fallbacks     prometheus.Counter
	assistant     *prometheus.CounterVec
	fetchedDays   *prometheus.CounterVec
}

// New creates a Recorder on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Recorder{
		registry: reg,
		queries: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Questions answered, by intent and outcome",
		}, []string{"intent", "outcome"}),
		queryDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Time to answer a question, by intent",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
		fallbacks: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_queries_total",
			Help:      "Questions the classifier could not label",
		}),
		assistant: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_requests_total",
			Help:      "Assistant calls, by outcome",
		}, []string{"outcome"}),
		fetchedDays: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_days_total",
			Help:      "Days processed by the fetcher, by status",
		}, []string{"status"}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

// ObserveQuery records one answered question.
func (r *Recorder) ObserveQuery(intent string, err error, took time.Duration) {
	if r == nil {
		return
	}
	r.queries.WithLabelValues(intent, outcome(err)).Inc()
	r.queryDuration.WithLabelValues(intent).Observe(took.Seconds())
}

// Fallback records a question routed to the assistant after classification failed.
func (r *Recorder) Fallback() {
	if r == nil {
		return
	}
	r.fallbacks.Inc()
}

// Assistant records one assistant call.
func (r *Recorder) Assistant(err error) {
	if r == nil {
		return
	}
	r.assistant.WithLabelValues(outcome(err)).Inc()
}

// FetchDays adds n days with the given status.
func (r *Recorder) FetchDays(status string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.fetchedDays.WithLabelValues(status).Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics listener started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
