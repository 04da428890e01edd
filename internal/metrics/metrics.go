package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's collectors, registered on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	FeedEvents      *prometheus.CounterVec
	FeedParseErrors prometheus.Counter
	FeedReconnects  *prometheus.CounterVec
	BroadcastEvents prometheus.Counter
	SendFailures    prometheus.Counter
	Subscribers     prometheus.Gauge
	ResolverLookups *prometheus.CounterVec
	ResolverMisses  prometheus.Counter
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FeedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_feed_events_total",
			Help: "Ticker events decoded from the upstream stream.",
		}, []string{"symbol"}),
		FeedParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_feed_parse_errors_total",
			Help: "Upstream frames dropped because they could not be decoded.",
		}),
		FeedReconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_feed_reconnects_total",
			Help: "Stream reconnect attempts after a connection failure.",
		}, []string{"symbol"}),
		BroadcastEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_broadcast_events_total",
			Help: "Events fanned out to the subscriber set.",
		}),
		SendFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_subscriber_send_failures_total",
			Help: "Subscriber sends that failed and dropped the subscriber.",
		}),
		Subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_subscribers",
			Help: "Currently connected subscribers.",
		}),
		ResolverLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_resolver_lookups_total",
			Help: "Symbols resolved, labeled by the step that satisfied them.",
		}, []string{"source"}),
		ResolverMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_resolver_misses_total",
			Help: "Symbols that stayed unresolved after every fallback.",
		}),
	}
}

// Handler returns the exposition handler for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
