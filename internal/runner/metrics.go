package runner

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// runnerMetrics holds Prometheus metrics for dashboard cycles
type runnerMetrics struct {
	cycles            *prometheus.CounterVec   // By status (ok/error)
	entitiesCollected prometheus.Counter       // Across all feeds
	entitiesDelivered *prometheus.CounterVec   // By notification, after filters
	dispatchDuration  *prometheus.HistogramVec // By notification, excluding the pause
	lastCycle         prometheus.Gauge
}

// newRunnerMetrics creates and registers runner metrics. A nil registerer
// disables metrics.
func newRunnerMetrics(reg prometheus.Registerer) (*runnerMetrics, error) {
	if reg == nil {
		return nil, nil // Metrics disabled
	}

	m := &runnerMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doodledash",
			Subsystem: "runner",
			Name:      "cycles_total",
			Help:      "Total number of dashboard cycles by status",
		}, []string{"status"}), // status: ok, error

		entitiesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "doodledash",
			Subsystem: "runner",
			Name:      "entities_collected_total",
			Help:      "Total number of messages collected from data feeds",
		}),

		entitiesDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doodledash",
			Subsystem: "runner",
			Name:      "entities_delivered_total",
			Help:      "Total number of messages that passed a notification's filters",
		}, []string{"notification"}),

		dispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doodledash",
			Subsystem: "runner",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent filtering, updating and drawing one notification",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"notification"}),

		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "doodledash",
			Subsystem: "runner",
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time of the last completed cycle",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.cycles, m.entitiesCollected, m.entitiesDelivered, m.dispatchDuration, m.lastCycle,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *runnerMetrics) recordCollected(n int) {
	if m == nil {
		return
	}
	m.entitiesCollected.Add(float64(n))
}

func (m *runnerMetrics) recordDispatch(notification string, delivered int, duration time.Duration) {
	if m == nil {
		return
	}
	m.entitiesDelivered.WithLabelValues(notification).Add(float64(delivered))
	m.dispatchDuration.WithLabelValues(notification).Observe(duration.Seconds())
}

func (m *runnerMetrics) recordCycle(err error, now time.Time) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.cycles.WithLabelValues(status).Inc()
	if err == nil {
		m.lastCycle.Set(float64(now.Unix()))
	}
}
