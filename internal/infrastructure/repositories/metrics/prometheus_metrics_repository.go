package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rios0rios0/orgmirror/internal/domain/entities"
	"github.com/rios0rios0/orgmirror/internal/domain/repositories"
)

const namespace = "orgmirror"

// PrometheusMetricsRepository collects run metrics in a private registry and writes
// them in the text exposition format, for node_exporter's textfile collector.
type PrometheusMetricsRepository struct {
	registry     *prometheus.Registry
	repositories *prometheus.CounterVec
	refs         *prometheus.CounterVec
	passes       prometheus.Counter
	waitSeconds  prometheus.Counter
	lastRun      prometheus.Gauge
}

// NewMetricsRepository creates a metrics repository with all collectors registered.
func NewMetricsRepository() repositories.MetricsRepository {
	return newPrometheusMetricsRepository()
}

func newPrometheusMetricsRepository() *PrometheusMetricsRepository {
	//nolint:exhaustruct // only the options we set
	m := &PrometheusMetricsRepository{
		registry: prometheus.NewRegistry(),
		repositories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repositories_total",
			Help:      "Source repositories processed, by outcome.",
		}, []string{"outcome"}),
		refs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refs_total",
			Help:      "Reference decisions taken on mirrors, by action.",
		}, []string{"action"}),
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliation_passes_total",
			Help:      "Reconciliation passes run across all repositories.",
		}),
		waitSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_wait_seconds_total",
			Help:      "Time spent waiting for the API rate limit to reset.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the metrics were last flushed.",
		}),
	}

	m.registry.MustRegister(m.repositories, m.refs, m.passes, m.waitSeconds, m.lastRun)
	return m
}

func (m *PrometheusMetricsRepository) RecordRepository(outcome entities.RepositoryOutcome) {
	m.repositories.WithLabelValues(string(outcome)).Inc()
}

func (m *PrometheusMetricsRepository) RecordSync(passes int, refs entities.PassResult) {
	m.passes.Add(float64(passes))
	m.refs.WithLabelValues("created").Add(float64(refs.Created))
	m.refs.WithLabelValues("updated").Add(float64(refs.Updated))
	m.refs.WithLabelValues("deferred").Add(float64(refs.Deferred))
	m.refs.WithLabelValues("unchanged").Add(float64(refs.Unchanged))
	m.refs.WithLabelValues("skipped").Add(float64(refs.Skipped))
}

func (m *PrometheusMetricsRepository) RecordWait(waited time.Duration) {
	m.waitSeconds.Add(waited.Seconds())
}

// Flush stamps the last-run gauge and writes every metric to path atomically.
func (m *PrometheusMetricsRepository) Flush(path string) error {
	m.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
