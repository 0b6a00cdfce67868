package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus instruments of the service. Construct it
// once per process; promauto registers on the default registry.
type Metrics struct {
	ComplaintsCreated    prometheus.Counter
	ComplaintTransitions *prometheus.CounterVec
	Escalations          prometheus.Counter
	SweepDuration        prometheus.Histogram
	OpenComplaints       prometheus.Gauge
	DirectoryErrors      prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		ComplaintsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "complaints_created_total",
			Help: "Total number of complaints filed",
		}),
		ComplaintTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "complaint_transitions_total",
			Help: "Total number of successful status transitions",
		}, []string{"status"}),
		Escalations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "complaint_escalations_total",
			Help: "Total number of automatic escalations",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "escalation_sweep_duration_seconds",
			Help:    "Time taken by one full escalation sweep",
			Buckets: prometheus.DefBuckets,
		}),
		OpenComplaints: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "open_complaints",
			Help: "Number of complaints not in a terminal status, as of the last sweep",
		}),
		DirectoryErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "directory_errors_total",
			Help: "Total number of staff directory lookup failures",
		}),
	}
}
