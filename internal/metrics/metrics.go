package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "sei_relayer"

// Metrics holds the relayer's Prometheus collectors
type Metrics struct {
	registry *prometheus.Registry

	vaasReceived       *prometheus.CounterVec
	completionAttempts prometheus.Counter
	outcomes           *prometheus.CounterVec
	queryErrors        prometheus.Counter
	completionDuration prometheus.Histogram
}

// New creates the collectors and registers them on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		vaasReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vaas_received_total",
				Help:      "VAAs received from the spy, by pre-filter result.",
			},
			[]string{"result"},
		),
		completionAttempts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_attempts_total",
				Help:      "Completion steps run against Sei, retries included.",
			},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_outcomes_total",
				Help:      "Terminal outcome of each completion attempt.",
			},
			[]string{"outcome"},
		),
		queryErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "redemption_query_errors_total",
				Help:      "Failed is_vaa_redeemed queries.",
			},
		),
		completionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "completion_duration_seconds",
				Help:      "Duration of a single completion attempt.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
			},
		),
	}

	m.registry.MustRegister(
		m.vaasReceived,
		m.completionAttempts,
		m.outcomes,
		m.queryErrors,
		m.completionDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Result labels for VAAs seen by the processor
const (
	ResultAccepted  = "accepted"
	ResultFiltered  = "filtered"
	ResultDuplicate = "duplicate"
	ResultInvalid   = "invalid"
)

func (m *Metrics) VAAReceived(result string) {
	m.vaasReceived.WithLabelValues(result).Inc()
}

func (m *Metrics) CompletionAttempt(outcome string, elapsed time.Duration) {
	m.completionAttempts.Inc()
	m.outcomes.WithLabelValues(outcome).Inc()
	m.completionDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) QueryError() {
	m.queryErrors.Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs the metrics endpoint on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, logger *zap.Logger, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving metrics", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server failed")
	}
	return nil
}
