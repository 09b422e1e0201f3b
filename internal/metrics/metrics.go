package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "salonq"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	checkIns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkins_total",
			Help:      "Inbound check-in attempts by outcome.",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Turn-approaching notifications by result.",
		},
		[]string{"result"},
	)

	cycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Recalculation cycles by trigger.",
		},
		[]string{"trigger"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time spent in one recalculation cycle.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	queueWaiting = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_waiting",
			Help:      "Entries waiting at the last recalculation.",
		},
	)

	queueEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_events_total",
			Help:      "Queue domain events by type.",
		},
		[]string{"type"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			checkIns,
			notifications,
			cycles,
			cycleDuration,
			queueWaiting,
			queueEvents,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncCheckIn(outcome string) {
	checkIns.WithLabelValues(outcome).Inc()
}

// IncNotification records a send attempt; result is "sent" or "failed".
func IncNotification(result string) {
	notifications.WithLabelValues(result).Inc()
}

// ObserveCycle records one recalculation pass and the waiting count it saw.
func ObserveCycle(trigger string, dur time.Duration, waiting int) {
	cycles.WithLabelValues(trigger).Inc()
	cycleDuration.Observe(dur.Seconds())
	queueWaiting.Set(float64(waiting))
}

func IncEvent(eventType string) {
	queueEvents.WithLabelValues(eventType).Inc()
}
