// Package metrics exports engine activity to Prometheus.
//
// [Metrics] implements the command, history and storage hooks of
// [observability]. Create it against a registry, then [Metrics.Install] it
// as the process-wide hooks:
//
//	reg := prometheus.NewRegistry()
//	m, err := metrics.New(reg)
//	if err != nil {
//		return err
//	}
//	m.Install()
//	mux.Handle("/metrics", metrics.Handler(reg))
//
// Failures are labeled with their error code (see [errs.GetCode]), or
// "error" when the error carries none.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	errs "github.com/matzehuels/blokdust/pkg/errors"
	"github.com/matzehuels/blokdust/pkg/observability"
)

const namespace = "blokdust"

var (
	_ observability.CommandHooks = (*Metrics)(nil)
	_ observability.HistoryHooks = (*Metrics)(nil)
	_ observability.StorageHooks = (*Metrics)(nil)
)

// Metrics holds the collectors fed by the observability hooks.
type Metrics struct {
	// CommandsTotal counts finished commands. Labels: command, status.
	CommandsTotal *prometheus.CounterVec
	// CommandDuration measures handler run time. Labels: command.
	CommandDuration *prometheus.HistogramVec
	// CommandsInFlight tracks dispatched commands that have not finished.
	CommandsInFlight prometheus.Gauge
	// UnknownCommandsTotal counts dispatches of unregistered names.
	UnknownCommandsTotal prometheus.Counter

	// HistoryOperations is the ledger length after the last record.
	HistoryOperations prometheus.Gauge
	// HistoryStepsTotal counts undo and redo steps. Labels: direction, status.
	HistoryStepsTotal *prometheus.CounterVec
	// HistoryEvictedTotal counts operations disposed to honor the bound.
	HistoryEvictedTotal prometheus.Counter

	// StorageOpsTotal counts store calls. Labels: backend, op, status.
	StorageOpsTotal *prometheus.CounterVec
	// StorageDuration measures store calls. Labels: backend, op.
	StorageDuration *prometheus.HistogramVec
	// StorageBytes measures payload sizes. Labels: backend, op.
	StorageBytes *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "executions_total",
			Help:      "Finished commands by name and status",
		}, []string{"command", "status"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "duration_seconds",
			Help:      "Command handler run time in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"command"}),
		CommandsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "in_flight",
			Help:      "Dispatched commands that have not finished",
		}),
		UnknownCommandsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "command",
			Name:      "unknown_total",
			Help:      "Dispatches of names with no registered command",
		}),
		HistoryOperations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "operations",
			Help:      "Operations held by the undo history",
		}),
		HistoryStepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "steps_total",
			Help:      "Undo and redo steps by direction and status",
		}, []string{"direction", "status"}),
		HistoryEvictedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "evicted_total",
			Help:      "Operations disposed because the history was full",
		}),
		StorageOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "Store calls by backend, operation and status",
		}, []string{"backend", "op", "status"}),
		StorageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "duration_seconds",
			Help:      "Store call latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
		}, []string{"backend", "op"}),
		StorageBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "payload_bytes",
			Help:      "Compressed composition size in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"backend", "op"}),
	}

	for _, c := range []prometheus.Collector{
		m.CommandsTotal, m.CommandDuration, m.CommandsInFlight, m.UnknownCommandsTotal,
		m.HistoryOperations, m.HistoryStepsTotal, m.HistoryEvictedTotal,
		m.StorageOpsTotal, m.StorageDuration, m.StorageBytes,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Install makes m the process-wide command, history and storage hooks.
func (m *Metrics) Install() {
	observability.SetCommandHooks(m)
	observability.SetHistoryHooks(m)
	observability.SetStorageHooks(m)
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	if code := errs.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

// =============================================================================
// Hooks
// =============================================================================

func (m *Metrics) OnCommandStart(_ context.Context, _ string) {
	m.CommandsInFlight.Inc()
}

func (m *Metrics) OnCommandComplete(_ context.Context, name string, d time.Duration, err error) {
	m.CommandsInFlight.Dec()
	m.CommandsTotal.WithLabelValues(name, status(err)).Inc()
	m.CommandDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) OnUnknownCommand(_ context.Context, _ string) {
	// Names are caller-controlled, so they stay out of the labels.
	m.UnknownCommandsTotal.Inc()
}

func (m *Metrics) OnRecord(_ context.Context, size int) {
	m.HistoryOperations.Set(float64(size))
}

func (m *Metrics) OnUndo(_ context.Context, err error) {
	m.HistoryStepsTotal.WithLabelValues("undo", status(err)).Inc()
}

func (m *Metrics) OnRedo(_ context.Context, err error) {
	m.HistoryStepsTotal.WithLabelValues("redo", status(err)).Inc()
}

func (m *Metrics) OnEvict(_ context.Context, count int) {
	m.HistoryEvictedTotal.Add(float64(count))
}

func (m *Metrics) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	m.observeStorage(backend, "save", size, d, err)
}

func (m *Metrics) OnLoad(_ context.Context, backend string, size int, d time.Duration, err error) {
	m.observeStorage(backend, "load", size, d, err)
}

func (m *Metrics) observeStorage(backend, op string, size int, d time.Duration, err error) {
	m.StorageOpsTotal.WithLabelValues(backend, op, status(err)).Inc()
	m.StorageDuration.WithLabelValues(backend, op).Observe(d.Seconds())
	if err == nil {
		m.StorageBytes.WithLabelValues(backend, op).Observe(float64(size))
	}
}
