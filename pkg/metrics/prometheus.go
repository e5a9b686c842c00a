package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	PollCycles      prometheus.Counter
	CycleDuration   prometheus.Histogram
	ProviderCalls   *prometheus.CounterVec
	StatusChanges   prometheus.Counter
	Disruptions     *prometheus.CounterVec
	Recommendations prometheus.Counter
	ErrorsCount     *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PollCycles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "The total number of completed poll cycles",
		}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_cycle_duration_seconds",
			Help:      "Time taken to run one poll cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		ProviderCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_calls_total",
			Help:      "Flight data provider calls by provider and result",
		}, []string{"provider", "result"}),
		StatusChanges: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_changes_total",
			Help:      "The total number of material flight status changes",
		}),
		Disruptions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disruptions_total",
			Help:      "Detected disruptions by kind",
		}, []string{"kind"}),
		Recommendations: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebooking_recommendations_total",
			Help:      "The total number of rebooking recommendations produced",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
