// Package metrics exposes booking counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	bookings      prometheus.Counter
	rejections    *prometheus.CounterVec
	cancellations prometheus.Counter
	jobs          *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_appointments_created_total",
			Help: "Appointments booked.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_rejections_total",
			Help: "Booking requests rejected by a business rule.",
		}, []string{"reason"}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_appointments_canceled_total",
			Help: "Appointments canceled.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_jobs_total",
			Help: "Background jobs processed, by kind and result.",
		}, []string{"kind", "result"}),
	}
	reg.MustRegister(c.bookings, c.rejections, c.cancellations, c.jobs)
	return c
}

func (c *Collector) BookingCreated() { c.bookings.Inc() }

func (c *Collector) BookingRejected(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	c.rejections.WithLabelValues(reason).Inc()
}

func (c *Collector) AppointmentCanceled() { c.cancellations.Inc() }

// JobProcessed records a job outcome: "ok", "retry" or "dead".
func (c *Collector) JobProcessed(kind, result string) {
	c.jobs.WithLabelValues(kind, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
