// Package metrics exposes pipeline activity as Prometheus collectors.
//
// The collectors are fed from stateless seams (terminal run records, attempt
// hooks, provider completions), so one Recorder serves concurrent runs
// without cross-talk.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kenjpais/diagram-generator/pkg/domain"
	"github.com/kenjpais/diagram-generator/pkg/persistence/middleware"
	"github.com/kenjpais/diagram-generator/pkg/ports"
)

// Recorder owns the pipeline collectors. Build one per process and hand its
// bridges (Hooks, StoreMiddleware, ProviderObserver) to the factory.
type Recorder struct {
	runs       *prometheus.CounterVec
	attempts   prometheus.Histogram
	rejections prometheus.Counter
	provider   *prometheus.HistogramVec
}

// NewRecorder builds the collectors and registers them on reg. Passing
// prometheus.DefaultRegisterer wires them into the default /metrics output.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diagen_runs_total",
			Help: "Terminal pipeline runs by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "diagen_run_attempts",
			Help:    "Validation passes a run needed before terminating.",
			Buckets: prometheus.LinearBuckets(1, 1, 8),
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diagen_syntax_rejections_total",
			Help: "Generated sources the syntax validator rejected.",
		}),
		provider: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diagen_provider_request_duration_seconds",
			Help:    "Wall-clock time of provider completions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "outcome"}),
	}
	reg.MustRegister(r.runs, r.attempts, r.rejections, r.provider)
	return r
}

// Hooks returns pipeline hooks counting syntax rejections.
func (r *Recorder) Hooks() domain.Hooks {
	return domain.Hooks{
		OnAttempt: func(_ context.Context, attempt domain.GenerationAttempt) {
			if !attempt.Valid {
				r.rejections.Inc()
			}
		},
	}
}

// StoreMiddleware observes terminal run records on their way into the store.
// Wrap it outermost so it sees the record as the pipeline wrote it, not a
// scrubbed or sealed envelope.
func (r *Recorder) StoreMiddleware() middleware.Middleware {
	return func(next ports.RunStore) ports.RunStore {
		return &meteredStore{next: next, rec: r}
	}
}

// ProviderObserver feeds the provider latency histogram; hand it to
// llm.WithObservation.
func (r *Recorder) ProviderObserver() func(provider string, elapsed time.Duration, err error) {
	return func(provider string, elapsed time.Duration, err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.provider.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
	}
}

type meteredStore struct {
	next ports.RunStore
	rec  *Recorder
}

func (m *meteredStore) Save(ctx context.Context, record domain.RunRecord) error {
	if record.Status.Terminal() {
		m.rec.runs.WithLabelValues(string(record.Status), reasonLabel(record.Reason)).Inc()
		m.rec.attempts.Observe(float64(record.Attempts))
	}
	return m.next.Save(ctx, record)
}

func (m *meteredStore) Load(ctx context.Context, id string) (domain.RunRecord, error) {
	return m.next.Load(ctx, id)
}

func (m *meteredStore) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return m.next.List(ctx, limit)
}

func (m *meteredStore) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func reasonLabel(reason domain.FailureReason) string {
	if reason == "" {
		return "none"
	}
	return string(reason)
}
