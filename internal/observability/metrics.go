// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Campaign metrics
	CampaignsStarted   *prometheus.CounterVec
	CampaignsCompleted *prometheus.CounterVec
	CampaignDuration   prometheus.Histogram

	// Trade metrics
	TradeLegsExecuted  *prometheus.CounterVec
	VolumeGeneratedSOL prometheus.Counter

	// Remote job metrics
	JobsSubmitted prometheus.Counter
	PollFailures  prometheus.Counter
	BotAPILatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_volume_bot"
	}

	return &Metrics{
		CampaignsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "campaign",
			Name:      "started_total",
			Help:      "Total number of campaigns started by mode",
		}, []string{"mode"}),
		CampaignsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "campaign",
			Name:      "completed_total",
			Help:      "Total number of campaigns ended by terminal status",
		}, []string{"status"}),
		CampaignDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "campaign",
			Name:      "duration_seconds",
			Help:      "Wall-clock campaign duration",
			Buckets:   prometheus.ExponentialBuckets(60, 2, 10),
		}),
		TradeLegsExecuted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "legs_executed_total",
			Help:      "Total number of trade legs executed by direction and result",
		}, []string{"direction", "result"}),
		VolumeGeneratedSOL: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trade",
			Name:      "volume_generated_sol_total",
			Help:      "Total trade volume generated in SOL",
		}),
		JobsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "botapi",
			Name:      "jobs_submitted_total",
			Help:      "Total number of campaigns delegated to the bot service",
		}),
		PollFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "botapi",
			Name:      "poll_failures_total",
			Help:      "Total number of failed progress polls",
		}),
		BotAPILatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "botapi",
			Name:      "request_duration_seconds",
			Help:      "Bot service request latency by endpoint",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObserveTradeLeg records one resolved trade leg.
func (m *Metrics) ObserveTradeLeg(direction string, success bool) {
	result := "success"
	if !success {
		result = "failed"
	}
	m.TradeLegsExecuted.WithLabelValues(direction, result).Inc()
}

// AddVolume records generated volume in SOL.
func (m *Metrics) AddVolume(sol float64) {
	m.VolumeGeneratedSOL.Add(sol)
}

var (
	defaultMetrics *Metrics
	defaultOnce    sync.Once
)

// Default returns the process-wide metrics instance.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = NewMetrics("")
	})
	return defaultMetrics
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
