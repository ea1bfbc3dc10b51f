package grpcweb

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	bookingv1 "appointment-booking-api/api/booking/v1"
	"appointment-booking-api/internal/metrics"
)

// Pinger reports whether a dependency is reachable.
type Pinger func(ctx context.Context) error

// NewRouter mounts the bridge under the service path next to /healthz and
// /metrics.
func NewRouter(b *Bridge, gatherer prometheus.Gatherer, ping Pinger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler(gatherer))
	r.Handle("/"+bookingv1.ServiceName+"/*", b)

	return r
}
