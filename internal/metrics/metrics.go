// Package metrics exposes engine telemetry as Prometheus collectors.
//
// Each Recorder owns a private registry so that several engines (tests,
// replay verification) can run in one process without colliding on the
// global default registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/roach88/bto/internal/domain"
	"github.com/roach88/bto/internal/registry"
)

// Outcome label values that are not error codes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder collects engine metrics.
type Recorder struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	opDuration     *prometheus.HistogramVec
	changes        *prometheus.CounterVec
	unitsRemaining *prometheus.GaugeVec
	officerSlots   *prometheus.GaugeVec
}

// New creates a Recorder whose metric names are prefixed with namespace
// ("bto" when empty).
func New(namespace string) *Recorder {
	if namespace == "" {
		namespace = "bto"
	}

	r := &Recorder{registry: prometheus.NewRegistry()}

	r.operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by name and outcome (ok, a rule violation code, or error)",
		},
		[]string{"op", "outcome"},
	)

	r.opDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent inside the engine write transaction",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		},
		[]string{"op"},
	)

	r.changes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "changes_total",
			Help:      "Committed registry row changes",
		},
		[]string{"table", "kind"},
	)

	r.unitsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "units_remaining",
			Help:      "Remaining units per project and flat type",
		},
		[]string{"project", "flat_type"},
	)

	r.officerSlots = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "inventory",
			Name:      "officer_slots_used",
			Help:      "Approved officers per project",
		},
		[]string{"project"},
	)

	r.registry.MustRegister(
		r.operations,
		r.opDuration,
		r.changes,
		r.unitsRemaining,
		r.officerSlots,
	)

	return r
}

// Registry returns the Prometheus registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordOperation counts one engine operation and its duration.
func (r *Recorder) RecordOperation(op string, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, Outcome(err)).Inc()
	r.opDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordChanges counts committed row changes and refreshes the inventory
// gauges of every project they touched.
func (r *Recorder) RecordChanges(changes []registry.Change) {
	if r == nil {
		return
	}
	for _, c := range changes {
		r.changes.WithLabelValues(c.Table, string(c.Kind)).Inc()
		if c.Table != registry.TableProjects {
			continue
		}
		if c.Kind == registry.ChangeDelete {
			if p, ok := c.Before.(*domain.Project); ok {
				r.forgetProject(p.Name)
			}
			continue
		}
		if p, ok := c.After.(*domain.Project); ok {
			r.ObserveProject(*p)
		}
	}
}

// ObserveProject sets the inventory gauges for p.
func (r *Recorder) ObserveProject(p domain.Project) {
	if r == nil {
		return
	}
	for label, ft := range p.FlatTypes {
		r.unitsRemaining.WithLabelValues(p.Name, label).Set(float64(ft.RemainingUnits))
	}
	r.officerSlots.WithLabelValues(p.Name).Set(float64(p.OfficerSlots))
}

func (r *Recorder) forgetProject(name string) {
	r.unitsRemaining.DeletePartialMatch(prometheus.Labels{"project": name})
	r.officerSlots.DeleteLabelValues(name)
}

// WriteText writes every collected metric in the Prometheus text exposition
// format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Outcome maps an operation result to the outcome label.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if code := domain.CodeOf(err); code != "" {
		return string(code)
	}
	return OutcomeError
}
