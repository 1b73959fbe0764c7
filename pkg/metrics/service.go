package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FramesParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensor_frames_parsed_total",
		Help: "Frames that validated into a reading.",
	})
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensor_frames_dropped_total",
		Help: "Brace-delimited frames rejected during validation.",
	})
	OpenFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensor_open_failures_total",
		Help: "Failed attempts to open the serial port.",
	})
	StaleResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensor_stale_resets_total",
		Help: "Links force-closed after going silent.",
	})
	BackoffCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sensor_backoff_cycles_total",
		Help: "Reconnect backoff waits entered by the supervisor.",
	})
	LinkConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sensor_link_connected",
		Help: "1 while the serial link is connected.",
	})
)

// Handler serves the default registry for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
