// Package metrics defines the prometheus instrumentation for the bridge and
// a module exposing it over HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegistryService is the service name under which the metrics module
// publishes its prometheus.Registerer.
const RegistryService = "metrics.registry"

// Dispatch outcome label values for UpdatesDispatched.
const (
	KindMessage   = "message"
	KindCallback  = "callback"
	KindDiscarded = "discarded"
)

// Bot holds the collectors instrumenting the Telegram channel. When the
// metrics module is not loaded the channel constructs a Bot against a
// private registry, so the instrumentation sites never need nil checks.
type Bot struct {
	UpdatesReceived   prometheus.Counter
	UpdatesDispatched *prometheus.CounterVec
	PollErrors        prometheus.Counter
	SendErrors        prometheus.Counter
	QueueDepth        prometheus.Gauge
}

// NewBot creates and registers the channel collectors.
func NewBot(reg prometheus.Registerer) *Bot {
	factory := promauto.With(reg)
	return &Bot{
		UpdatesReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "craftbridge",
			Subsystem: "telegram",
			Name:      "updates_received_total",
			Help:      "Updates fetched from getUpdates.",
		}),
		UpdatesDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "craftbridge",
			Subsystem: "telegram",
			Name:      "updates_dispatched_total",
			Help:      "Updates consumed from the queue, by outcome.",
		}, []string{"kind"}),
		PollErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "craftbridge",
			Subsystem: "telegram",
			Name:      "poll_errors_total",
			Help:      "Failed getUpdates calls.",
		}),
		SendErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "craftbridge",
			Subsystem: "telegram",
			Name:      "send_errors_total",
			Help:      "Failed outbound sends, per destination chat.",
		}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "craftbridge",
			Subsystem: "telegram",
			Name:      "update_queue_depth",
			Help:      "Updates buffered between poller and dispatcher.",
		}),
	}
}
