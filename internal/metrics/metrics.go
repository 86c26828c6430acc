package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	MonitoringRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demoforge_monitoring_runs_total",
			Help: "Per-tenant monitoring runs by frequency and outcome",
		},
		[]string{"frequency", "status"},
	)

	AlertsFired = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demoforge_alerts_fired_total",
			Help: "Alerts created by alert type and severity",
		},
		[]string{"alert_type", "severity"},
	)

	NotificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demoforge_notifications_sent_total",
			Help: "Notification delivery attempts by channel and outcome",
		},
		[]string{"channel", "status"},
	)

	GatherFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demoforge_gather_failures_total",
			Help: "Data-gather failures by category",
		},
		[]string{"category"},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "demoforge_llm_requests_total",
			Help: "LLM completion requests by tool and outcome",
		},
		[]string{"tool", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "demoforge_llm_request_duration_seconds",
			Help:    "Duration of LLM completion requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)
)

func Init() {
	prometheus.MustRegister(
		MonitoringRuns,
		AlertsFired,
		NotificationsSent,
		GatherFailures,
		LLMRequests,
		LLMRequestDuration,
	)
}
