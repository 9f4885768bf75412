// Prometheus collectors for the simulation engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TicksTotal counts completed simulation ticks.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeops_ticks_total",
		Help: "Number of completed simulation ticks.",
	})

	// HealthUpdatesTotal counts accepted health feed deliveries.
	HealthUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeops_health_updates_total",
		Help: "Number of accepted health feed updates.",
	})

	// HealthMalformedTotal counts rejected or defaulted feed payloads.
	HealthMalformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pipeops_health_malformed_total",
		Help: "Number of malformed health feed payloads.",
	})

	// WriteErrorsTotal counts failed telemetry writes, labelled by sink.
	WriteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pipeops_write_errors_total",
		Help: "Number of failed telemetry writes per sink.",
	}, []string{"sink"})

	// RunState reports the controller state (0 paused, 1 starting, 2 running).
	RunState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pipeops_run_state",
		Help: "Current run state: 0=paused, 1=starting, 2=running.",
	})

	// Subscribers reports the number of active tick subscribers.
	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pipeops_subscribers",
		Help: "Number of active tick snapshot subscribers.",
	})
)
