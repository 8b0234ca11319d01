package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonik",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotQueries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonik",
			Name:      "slot_queries_total",
			Help:      "Availability enumerations served.",
		},
	)

	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonik",
			Name:      "validations_total",
			Help:      "Booking validations by outcome reason (ok for accepted).",
		},
		[]string{"reason"},
	)

	slotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonik",
			Name:      "slot_cache_total",
			Help:      "Slot cache lookups by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, slotQueries, validations, slotCache)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSlotQuery counts one availability enumeration.
func IncSlotQuery() {
	slotQueries.Inc()
}

// IncValidation counts a validation outcome. Pass "ok" for accepted
// candidates, the reason code otherwise.
func IncValidation(reason string) {
	validations.WithLabelValues(reason).Inc()
}

// IncCache counts a slot cache lookup: "hit" or "miss".
func IncCache(result string) {
	slotCache.WithLabelValues(result).Inc()
}
