// Package metrics exposes Prometheus counters for bookings, decisions,
// logins and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what use cases and middleware depend on.
type Recorder interface {
	RecordAppointmentCreated(flow string)
	RecordTransition(status string)
	RecordLogin(result string)
	RecordHTTPRequest(method string, status int, latency time.Duration)
}

const (
	FlowPublic = "public"
	FlowUser   = "user"

	LoginSucceeded = "succeeded"
	LoginFailed    = "failed"
)

type Collector struct {
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	logins      *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latency     prometheus.Histogram
}

// NewCollector registers every metric on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_appointments_created_total",
			Help: "Appointments created, by booking flow.",
		}, []string{"flow"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_appointment_transitions_total",
			Help: "Appointment status transitions, by target status.",
		}, []string{"status"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_logins_total",
			Help: "Login attempts, by result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "barber_http_requests_total",
			Help: "HTTP requests, by method and status code.",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "barber_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.created,
		c.transitions,
		c.logins,
		c.requests,
		c.latency,
	)

	return c
}

func (c *Collector) RecordAppointmentCreated(flow string) {
	c.created.WithLabelValues(flow).Inc()
}

func (c *Collector) RecordTransition(status string) {
	c.transitions.WithLabelValues(status).Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(method string, status int, latency time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.latency.Observe(latency.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAppointmentCreated(string)              {}
func (Nop) RecordTransition(string)                      {}
func (Nop) RecordLogin(string)                           {}
func (Nop) RecordHTTPRequest(string, int, time.Duration) {}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Handler serves the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var (
	_ Recorder = (*Collector)(nil)
	_ Recorder = Nop{}
)
