// Package metrics exposes the Prometheus instruments for the report
// pipeline. Everything registers on the default registry and is served from
// the /metrics route.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_runs_total",
		Help: "Report generation runs by kind, profile and outcome.",
	}, []string{"kind", "profile", "outcome"})

	ReportRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "report_run_duration_seconds",
		Help:    "Wall time of a single report generation run.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"kind"})

	SchedulerLastTick = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_last_tick_timestamp_seconds",
		Help: "Unix time of the scheduler's last completed scan.",
	})

	SchedulerReportsDue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scheduler_reports_due",
		Help: "Reports found due at the last scheduler scan.",
	})
)

// ObserveRun records one finished run.
func ObserveRun(kind, profile string, success bool, elapsed time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}

	ReportRuns.WithLabelValues(kind, profile, outcome).Inc()
	ReportRunDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
