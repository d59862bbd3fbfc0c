// Package metrics exposes Prometheus instrumentation for the store and
// the backing device.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mstovari/framstore/pkg/device"
	"github.com/mstovari/framstore/pkg/store"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

func result(err error) string {
	if err != nil {
		return resultError
	}

	return resultSuccess
}

// StoreMetrics implements store.Metrics on Prometheus counters.
type StoreMetrics struct {
	loads       *prometheus.CounterVec
	commits     *prometheus.CounterVec
	flushes     *prometheus.CounterVec
	flushNoops  prometheus.Counter
	crcFailures prometheus.Counter
	lastSeq     prometheus.Gauge
}

var _ store.Metrics = (*StoreMetrics)(nil)

// NewStoreMetrics creates and registers the store metrics with reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	factory := promauto.With(reg)

	return &StoreMetrics{
		loads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framstore_loads_total",
				Help: "Total number of record loads",
			},
			[]string{"result"},
		),
		commits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framstore_commits_total",
				Help: "Total number of attempted record commits",
			},
			[]string{"result"},
		),
		flushes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framstore_flushes_total",
				Help: "Total number of flushes that committed a dirty cache",
			},
			[]string{"result"},
		),
		flushNoops: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "framstore_flush_noops_total",
				Help: "Total number of flushes that found a clean cache",
			},
		),
		crcFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "framstore_crc_failures_total",
				Help: "Total number of slots rejected by checksum verification",
			},
		),
		lastSeq: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "framstore_last_committed_seq",
				Help: "Sequence number of the most recently committed generation",
			},
		),
	}
}

// ObserveLoad counts one load by outcome. ErrNotFound counts as success;
// it is the expected state on virgin media.
func (m *StoreMetrics) ObserveLoad(err error) {
	if err == store.ErrNotFound {
		m.loads.WithLabelValues(resultSuccess).Inc()

		return
	}

	m.loads.WithLabelValues(result(err)).Inc()
}

// ObserveCommit counts one commit attempt and tracks the last sequence.
func (m *StoreMetrics) ObserveCommit(seq uint32, err error) {
	m.commits.WithLabelValues(result(err)).Inc()

	if err == nil {
		m.lastSeq.Set(float64(seq))
	}
}

// ObserveFlush counts one flush; clean-cache flushes count separately.
func (m *StoreMetrics) ObserveFlush(committed bool, err error) {
	if !committed {
		m.flushNoops.Inc()

		return
	}

	m.flushes.WithLabelValues(result(err)).Inc()
}

// AddCRCFailure counts one checksum rejection.
func (m *StoreMetrics) AddCRCFailure() {
	m.crcFailures.Inc()
}

// InstrumentedDevice decorates a device.Device with operation and byte
// counters.
type InstrumentedDevice struct {
	inner device.Device
	ops   *prometheus.CounterVec
	bytes *prometheus.CounterVec
}

var _ device.Device = (*InstrumentedDevice)(nil)

// NewInstrumentedDevice wraps inner and registers its metrics with reg.
func NewInstrumentedDevice(inner device.Device, reg prometheus.Registerer) *InstrumentedDevice {
	factory := promauto.With(reg)

	return &InstrumentedDevice{
		inner: inner,
		ops: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framstore_device_operations_total",
				Help: "Total number of device operations",
			},
			[]string{"op", "result"},
		),
		bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framstore_device_bytes_total",
				Help: "Total bytes transferred to or from the device",
			},
			[]string{"op"},
		),
	}
}

// Read delegates and counts the operation.
func (d *InstrumentedDevice) Read(addr uint32, dst []byte) error {
	err := d.inner.Read(addr, dst)
	d.ops.WithLabelValues("read", result(err)).Inc()

	if err == nil {
		d.bytes.WithLabelValues("read").Add(float64(len(dst)))
	}

	return err
}

// Write delegates and counts the operation.
func (d *InstrumentedDevice) Write(addr uint32, src []byte) error {
	err := d.inner.Write(addr, src)
	d.ops.WithLabelValues("write", result(err)).Inc()

	if err == nil {
		d.bytes.WithLabelValues("write").Add(float64(len(src)))
	}

	return err
}

// Size delegates to the wrapped device.
func (d *InstrumentedDevice) Size() uint32 {
	return d.inner.Size()
}
