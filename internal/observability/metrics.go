package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlbridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total diagnostics HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mlbridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Diagnostics HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	rootEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlbridge",
			Subsystem: "roots",
			Name:      "events_total",
			Help:      "Persistent root registrations and removals.",
		},
		[]string{"event"},
	)
	liveRoots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mlbridge",
			Subsystem: "roots",
			Name:      "live",
			Help:      "Persistent roots currently registered with the collector.",
		},
	)
	framesOpened = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mlbridge",
			Subsystem: "frames",
			Name:      "opened_total",
			Help:      "Temporary frames opened.",
		},
	)
	blockingSections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlbridge",
			Subsystem: "lock",
			Name:      "blocking_sections_total",
			Help:      "Blocking sections run with the runtime lock released.",
		},
		[]string{"outcome"},
	)
	blockingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mlbridge",
			Subsystem: "lock",
			Name:      "blocking_section_seconds",
			Help:      "Time spent with the runtime lock released.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	closureCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mlbridge",
			Subsystem: "closure",
			Name:      "calls_total",
			Help:      "Foreign closure applications by name and outcome.",
		},
		[]string{"name", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			rootEvents, liveRoots, framesOpened,
			blockingSections, blockingDuration, closureCalls,
		)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordRootRegistered() {
	rootEvents.WithLabelValues("registered").Inc()
	liveRoots.Inc()
}

func RecordRootRemoved() {
	rootEvents.WithLabelValues("removed").Inc()
	liveRoots.Dec()
}

func RecordFrameOpened() {
	framesOpened.Inc()
}

func RecordBlockingSection(duration time.Duration, panicked bool) {
	outcome := "ok"
	if panicked {
		outcome = "panic"
	}
	blockingSections.WithLabelValues(outcome).Inc()
	blockingDuration.Observe(duration.Seconds())
}

func RecordClosureCall(name string, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "exception"
	}
	closureCalls.WithLabelValues(name, outcome).Inc()
}
