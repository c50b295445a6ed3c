// Package metrics exposes the bakery counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is what the usecases report to. Keep label values low-cardinality.
type Recorder interface {
	OrderCreated(fulfillment string)
	OrderLine(outcome string)
	Restocked(reason string, units int64)
	IdentifierAllocated(kind string, recycled bool)
}

type nop struct{}

func (nop) OrderCreated(string)              {}
func (nop) OrderLine(string)                 {}
func (nop) Restocked(string, int64)          {}
func (nop) IdentifierAllocated(string, bool) {}

// Nop discards everything.
func Nop() Recorder { return nop{} }

// OrNop lets callers pass a nil recorder.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return nop{}
	}
	return r
}

type Prometheus struct {
	ordersCreated *prometheus.CounterVec
	orderLines    *prometheus.CounterVec
	restocked     *prometheus.CounterVec
	identifiers   *prometheus.CounterVec
}

// NewPrometheus registers the counters on reg (use prometheus.NewRegistry in tests).
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakery", Name: "orders_created_total",
			Help: "Orders created, by fulfillment (fulfilled, partial, empty).",
		}, []string{"fulfillment"}),
		orderLines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakery", Name: "order_lines_total",
			Help: "Requested order lines, by outcome.",
		}, []string{"outcome"}),
		restocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakery", Name: "restocked_units_total",
			Help: "Units credited back to stock, by reason (cancel, delete).",
		}, []string{"reason"}),
		identifiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bakery", Name: "identifiers_allocated_total",
			Help: "Identifiers handed out, by kind and source (recycled, counter).",
		}, []string{"kind", "source"}),
	}
	reg.MustRegister(p.ordersCreated, p.orderLines, p.restocked, p.identifiers)
	return p
}

func (p *Prometheus) OrderCreated(fulfillment string) {
	p.ordersCreated.WithLabelValues(fulfillment).Inc()
}

func (p *Prometheus) OrderLine(outcome string) {
	p.orderLines.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) Restocked(reason string, units int64) {
	if units <= 0 {
		return
	}
	p.restocked.WithLabelValues(reason).Add(float64(units))
}

func (p *Prometheus) IdentifierAllocated(kind string, recycled bool) {
	source := "counter"
	if recycled {
		source = "recycled"
	}
	p.identifiers.WithLabelValues(kind, source).Inc()
}
