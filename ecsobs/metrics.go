package ecsobs

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the internal sink interface abstracting away the concrete
// backend (Prometheus vs noop); rendergraph and app only know about the
// generic methods here. Of these, only IncFrameSubmitCount is called
// outside tests (by the render-graph runner).
type Metrics interface {
	SetArchetypeCount(world string, n int)
	SetDispatcherQueueDepth(schedule string, n int)
	IncFrameSubmitCount(graph string)
}

type noopMetrics struct{}

func (noopMetrics) SetArchetypeCount(string, int)        {}
func (noopMetrics) SetDispatcherQueueDepth(string, int)  {}
func (noopMetrics) IncFrameSubmitCount(string)           {}

// NoopMetrics is the default Metrics sink: every call is a no-op, so
// the hot path does not pay for metric updates when no registry was
// supplied.
var NoopMetrics Metrics = noopMetrics{}

type promMetrics struct {
	archetypeCount  *prometheus.GaugeVec
	dispatchQueue   *prometheus.GaugeVec
	frameSubmits    *prometheus.CounterVec
}

// NewPromMetrics registers the ecsobs metric collectors on reg and
// returns a Metrics backed by them. Caller must not pass a nil reg.
func NewPromMetrics(reg *prometheus.Registry) Metrics {
	pm := &promMetrics{
		archetypeCount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "epix",
				Name:      "archetype_count",
				Help:      "Number of live archetypes in a World.",
			}, []string{"world"}),
		dispatchQueue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "epix",
				Name:      "dispatcher_queue_depth",
				Help:      "Number of systems currently ready to dispatch.",
			}, []string{"schedule"}),
		frameSubmits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "epix",
				Name:      "frame_submit_total",
				Help:      "Number of render-graph command-list batches submitted.",
			}, []string{"graph"}),
	}
	reg.MustRegister(pm.archetypeCount, pm.dispatchQueue, pm.frameSubmits)
	return pm
}

func (m *promMetrics) SetArchetypeCount(world string, n int) {
	m.archetypeCount.WithLabelValues(world).Set(float64(n))
}

func (m *promMetrics) SetDispatcherQueueDepth(schedule string, n int) {
	m.dispatchQueue.WithLabelValues(schedule).Set(float64(n))
}

func (m *promMetrics) IncFrameSubmitCount(graph string) {
	m.frameSubmits.WithLabelValues(graph).Inc()
}

// NewMetrics picks the Prometheus-backed sink if reg is non-nil,
// otherwise the no-op sink.
func NewMetrics(reg *prometheus.Registry) Metrics {
	if reg == nil {
		return NoopMetrics
	}
	return NewPromMetrics(reg)
}
