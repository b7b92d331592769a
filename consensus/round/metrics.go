package round

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// metricsRecorder wires round outcomes into a prometheus registry. It is a
// sync.Once-guarded singleton, so its collectors are registered with the
// default prometheus registerer exactly once per process.
type metricsRecorder struct {
	outcomes      *prometheus.CounterVec
	votesReceived prometheus.Gauge
	datasReceived prometheus.Gauge
	equivocations prometheus.Counter
}

var (
	metricsOnce     sync.Once
	metricsRegistry *metricsRecorder
)

// Metrics returns the process-wide round-layer metrics registry,
// registering its collectors with the default prometheus registerer on
// first use. Pass the result to NewRoundLayer to enable instrumentation;
// pass nil to disable it.
func Metrics() *metricsRecorder {
	metricsOnce.Do(func() {
		metricsRegistry = &metricsRecorder{
			outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nhb",
				Subsystem: "round",
				Name:      "outcomes_total",
				Help:      "Total round outcomes by result.",
			}, []string{"result"}),
			votesReceived: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "nhb",
				Subsystem: "round",
				Name:      "votes_received",
				Help:      "Votes counted in the active round's RoundMessages.",
			}),
			datasReceived: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: "nhb",
				Subsystem: "round",
				Name:      "datas_received",
				Help:      "Datas counted in the active round's RoundMessages.",
			}),
			equivocations: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nhb",
				Subsystem: "round",
				Name:      "equivocations_total",
				Help:      "Votes dropped because a voter had already voted differently this round.",
			}),
		}
		prometheus.MustRegister(
			metricsRegistry.outcomes,
			metricsRegistry.votesReceived,
			metricsRegistry.datasReceived,
			metricsRegistry.equivocations,
		)
	})
	return metricsRegistry
}

func (m *metricsRecorder) recordOutcome(success bool) {
	if m == nil {
		return
	}
	if success {
		m.outcomes.WithLabelValues("success").Inc()
	} else {
		m.outcomes.WithLabelValues("failure").Inc()
	}
}

func (m *metricsRecorder) recordEquivocation() {
	if m == nil {
		return
	}
	m.equivocations.Inc()
}

func (m *metricsRecorder) sampleMessages(stats MessagesStats) {
	if m == nil {
		return
	}
	m.votesReceived.Set(float64(stats.Votes))
	m.datasReceived.Set(float64(stats.Datas))
}
