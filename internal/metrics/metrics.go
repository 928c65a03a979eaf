// internal/metrics/metrics.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status label values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// OperationCount counts drawer operations by type and outcome
	OperationCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drawer_operations_total",
		Help: "Total number of drawer operations processed.",
	}, []string{"operation_type", "status"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drawer_operation_duration_seconds",
		Help:    "Duration of drawer operations, including the output drain.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation_type"})

	// Connected is 1 while a serial handle is open
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "drawer_connected",
		Help: "Whether the cash drawer serial port is currently open.",
	})

	UpdateChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drawer_update_checks_total",
		Help: "Total number of update feed checks by result.",
	}, []string{"result"})
)

// ObserveOperation records the duration and outcome of one operation
func ObserveOperation(operation string, err error, start time.Time) {
	status := StatusSuccess
	if err != nil {
		status = StatusFailure
	}
	OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	OperationCount.WithLabelValues(operation, status).Inc()
}

// SetConnected updates the connection gauge
func SetConnected(connected bool) {
	if connected {
		Connected.Set(1)
		return
	}
	Connected.Set(0)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
