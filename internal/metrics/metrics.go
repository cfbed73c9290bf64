// Package metrics counts slot and catalog activity in a Prometheus registry
// that is written out as a node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"addrbook/internal/addrbook"
)

// Recorder implements addrbook.Metrics.
type Recorder struct {
	registry *prometheus.Registry

	slotReads     *prometheus.CounterVec
	slotWrites    *prometheus.CounterVec
	sharedFetches *prometheus.CounterVec
	records       *prometheus.GaugeVec
}

var _ addrbook.Metrics = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.slotReads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "addrbook",
		Name:      "slot_reads_total",
		Help:      "Reads of the persistence slot by result",
	}, []string{"result"})
	r.slotWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "addrbook",
		Name:      "slot_writes_total",
		Help:      "Writes of the persistence slot by result",
	}, []string{"result"})
	r.sharedFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "addrbook",
		Name:      "shared_fetches_total",
		Help:      "Fetches of the shared address catalog by result",
	}, []string{"result"})
	r.records = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "addrbook",
		Name:      "records",
		Help:      "Number of address records held, by origin",
	}, []string{"origin"})

	r.registry.MustRegister(r.slotReads, r.slotWrites, r.sharedFetches, r.records)

	// Pre-create label values so a fresh textfile shows zeros instead of gaps.
	for _, c := range []*prometheus.CounterVec{r.slotReads, r.slotWrites, r.sharedFetches} {
		c.WithLabelValues("ok")
		c.WithLabelValues("error")
	}
	r.records.WithLabelValues(string(addrbook.OriginLocal))
	r.records.WithLabelValues(string(addrbook.OriginShared))

	return r
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func (r *Recorder) SlotRead(ok bool)    { r.slotReads.WithLabelValues(result(ok)).Inc() }
func (r *Recorder) SlotWrite(ok bool)   { r.slotWrites.WithLabelValues(result(ok)).Inc() }
func (r *Recorder) SharedFetch(ok bool) { r.sharedFetches.WithLabelValues(result(ok)).Inc() }

func (r *Recorder) Records(local, shared int) {
	r.records.WithLabelValues(string(addrbook.OriginLocal)).Set(float64(local))
	r.records.WithLabelValues(string(addrbook.OriginShared)).Set(float64(shared))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is written atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
