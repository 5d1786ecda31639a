// Package metrics exposes salat's prometheus counters.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Loads counts LoadDay outcomes by source: cache, network, error, no_location.
	Loads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salat_day_loads_total",
			Help: "Day loads by outcome.",
		},
		[]string{"outcome"},
	)
	// Fetches counts calls to the prayer time service by result.
	Fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salat_fetches_total",
			Help: "Prayer time service calls by result.",
		},
		[]string{"result"},
	)
	// Superseded counts loads whose result was dropped because a newer day
	// was requested first.
	Superseded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salat_superseded_loads_total",
			Help: "Loads discarded because a newer generation was current.",
		},
	)
	// Toggles counts completion toggles by persistence result.
	Toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salat_toggles_total",
			Help: "Completion toggles by persistence result.",
		},
		[]string{"result"},
	)
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salat_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
)

func init() {
	prometheus.MustRegister(Loads, Fetches, Superseded, Toggles, requestCounter)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts every request by its chi route pattern. Requests that
// match no route share the "unmatched" label.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestCounter.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}
