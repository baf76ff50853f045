package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IncrementalCounter interface {
	Increment(val ...string)
}

type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) IncrementalCounter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

// Noop discards increments; used where no registry is wired.
type Noop struct{}

func (Noop) Increment(...string) {}

// Set groups the counters the service records.
type Set struct {
	// BackendRequests counts outbound calls from the frontend to the REST
	// backend, labelled by method and outcome ("ok" or "error").
	BackendRequests IncrementalCounter
	// Invalidations counts stale-key events, labelled by mutation kind.
	Invalidations IncrementalCounter
	// APIRequests counts REST API calls, labelled by method and status code.
	APIRequests IncrementalCounter
}

// NewSet registers every counter with reg.
func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		BackendRequests: NewCounterWithRegistry(reg, "menu_admin_backend_requests_total",
			"Outbound requests from the admin frontend to the menu item API.", "method", "outcome"),
		Invalidations: NewCounterWithRegistry(reg, "menu_admin_query_invalidations_total",
			"Query cache invalidation events emitted by successful mutations.", "kind"),
		APIRequests: NewCounterWithRegistry(reg, "menu_admin_api_requests_total",
			"Requests served by the menu item REST API.", "method", "status"),
	}
}

// NoopSet returns a Set whose counters discard everything.
func NoopSet() *Set {
	return &Set{BackendRequests: Noop{}, Invalidations: Noop{}, APIRequests: Noop{}}
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
