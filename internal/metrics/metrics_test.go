package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewBotRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	bot := NewBot(reg)

	bot.UpdatesReceived.Inc()
	bot.UpdatesDispatched.WithLabelValues(KindMessage).Inc()
	bot.UpdatesDispatched.WithLabelValues(KindDiscarded).Inc()
	bot.QueueDepth.Set(3)

	if got := testutil.ToFloat64(bot.UpdatesReceived); got != 1 {
		t.Errorf("updates received = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bot.UpdatesDispatched.WithLabelValues(KindMessage)); got != 1 {
		t.Errorf("dispatched messages = %v, want 1", got)
	}
	if got := testutil.ToFloat64(bot.QueueDepth); got != 3 {
		t.Errorf("queue depth = %v, want 3", got)
	}

	// A second Bot on a fresh registry must not collide.
	NewBot(prometheus.NewRegistry())
}

func TestModuleConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.defaults()
	if cfg.Listen == "" || cfg.Path != "/metrics" {
		t.Errorf("defaults = %+v, want listen address and /metrics path", cfg)
	}
}
