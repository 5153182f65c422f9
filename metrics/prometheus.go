// Package metrics provides a Prometheus implementation of l2cache.Recorder.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/singleflight"
)

// DefaultNamespace is the metric namespace used when Config.Namespace is empty.
const DefaultNamespace = "l2cache"

// Load results used as the "result" label of the loads counter.
const (
	ResultSuccess  = "success"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// Config configures Prometheus metrics.
type Config struct {
	// Namespace prefixes every metric name. The default is DefaultNamespace.
	Namespace string
	// Registerer registers the metrics. The default is prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Coordinator, if set, is exposed as the in_flight_loads gauge.
	Coordinator *singleflight.Coordinator
}

// Prometheus records accessor events as Prometheus counters labelled by region.
type Prometheus struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	loads         *prometheus.CounterVec
	shared        *prometheus.CounterVec
	storeFailures *prometheus.CounterVec
}

var _ l2cache.Recorder = (*Prometheus)(nil)

// New creates and registers the metrics. It panics if a metric is already registered.
func New(cfg Config) *Prometheus {
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registerer := cfg.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	p := &Prometheus{
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hits_total",
			Help:      "Total number of keys served from the cache store",
		}, []string{"region"}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "misses_total",
			Help:      "Total number of keys not found in the cache store",
		}, []string{"region"}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "Total number of backing store loads by result",
		}, []string{"region", "result"}),
		shared: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shared_loads_total",
			Help:      "Total number of callers that received another caller's in-flight load",
		}, []string{"region"}),
		storeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_failures_total",
			Help:      "Total number of failed cache store operations",
		}, []string{"region", "op"}),
	}
	if c := cfg.Coordinator; c != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "in_flight_loads",
			Help:      "Number of single-flight loads in progress",
		}, func() float64 {
			return float64(c.InFlight())
		})
	}
	return p
}

func (p *Prometheus) Hit(region string, n int) {
	if n > 0 {
		p.hits.WithLabelValues(region).Add(float64(n))
	}
}

func (p *Prometheus) Miss(region string, n int) {
	if n > 0 {
		p.misses.WithLabelValues(region).Add(float64(n))
	}
}

func (p *Prometheus) Load(region string, err error) {
	result := ResultSuccess
	switch {
	case errors.Is(err, l2cache.ErrNotFound):
		result = ResultNotFound
	case err != nil:
		result = ResultError
	}
	p.loads.WithLabelValues(region, result).Inc()
}

func (p *Prometheus) Shared(region string) {
	p.shared.WithLabelValues(region).Inc()
}

func (p *Prometheus) StoreFailure(region, op string) {
	p.storeFailures.WithLabelValues(region, op).Inc()
}
