package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "wordbucket"

// Metrics exports request and table counters to Prometheus.
// A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entries  prometheus.Gauge
}

// NewMetrics registers the server metrics on reg, the default registerer when nil
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Requests handled by the IPC server.",
		}, []string{"action", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Time spent handling a request.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}, []string{"action"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "classifier",
			Name:      "entries",
			Help:      "Distinct (label, word) pairs in the frequency table.",
		}),
	}
	for _, collector := range []prometheus.Collector{m.requests, m.duration, m.entries} {
		if err := reg.Register(collector); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return nil, fmt.Errorf("register server metric: %w", err)
		}
	}
	return m, nil
}

// Record counts one handled request
func (m *Metrics) Record(action string, code int, took time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(action, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(action).Observe(took.Seconds())
}

// SetEntries updates the table size gauge
func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.entries.Set(float64(n))
}

// ServeMetrics exposes g on addr under /metrics in the background.
// The returned server is shut down by the caller.
func ServeMetrics(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Debugf("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics endpoint stopped: %v", err)
		}
	}()
	return srv
}
