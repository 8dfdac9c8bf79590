package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookDispatches counts inbound webhook deliveries by topic and outcome.
// Outcomes: ok, rejected, duplicate, unhandled, handler_error.
var WebhookDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shopbridge_webhook_dispatches_total",
	Help: "Inbound webhook deliveries by topic and outcome",
}, []string{"topic", "result"})

// SessionStoreRequests counts round trips to the session backend.
var SessionStoreRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shopbridge_session_store_requests_total",
	Help: "Session backend round trips by operation and outcome",
}, []string{"op", "result"})

// BootstrapRuns counts bootstrap sequences by outcome of each step.
var BootstrapRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shopbridge_bootstrap_runs_total",
	Help: "Bootstrap sequences by outcome",
}, []string{"result"})
