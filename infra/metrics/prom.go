package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/carprice/core/metrics"
)

// PromSink records pricing activity in Prometheus metrics.
type PromSink struct {
	requests *prometheus.CounterVec
	price    *prometheus.HistogramVec
	duration prometheus.Histogram
	ensemble prometheus.Histogram
}

// NewPromSink registers pricing metrics on the default Prometheus registerer.
// The Prometheus server should be started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_estimates_total",
		Help: "Pricing requests by brand and outcome",
	}, []string{"brand", "outcome"})
	price := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "price_estimate_usd",
		Help:    "Calibrated mean price of successful estimates",
		Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
	}, []string{"brand"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "price_estimate_duration_seconds",
		Help:    "End to end duration of successful estimates",
		Buckets: prometheus.DefBuckets,
	})
	ensemble := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ensemble_latency_seconds",
		Help:    "Time spent evaluating the estimator committee",
		Buckets: prometheus.DefBuckets,
	})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if price, err = register(reg, price); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if ensemble, err = register(reg, ensemble); err != nil {
		return nil, err
	}
	return &PromSink{requests: requests, price: price, duration: duration, ensemble: ensemble}, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordEstimate counts the estimate and observes its mean price.
func (s *PromSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	brand := ev.Estimate.Vehicle.Brand
	s.requests.WithLabelValues(brand, "estimated").Inc()
	s.price.WithLabelValues(brand).Observe(ev.Estimate.Mean)
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordRejection counts the request under its rejection reason.
func (s *PromSink) RecordRejection(ev coremetrics.RejectionEvent) error {
	s.requests.WithLabelValues(ev.Brand, ev.Reason).Inc()
	return nil
}

// RecordEnsembleLatency observes the committee evaluation time.
func (s *PromSink) RecordEnsembleLatency(l coremetrics.EnsembleLatency) error {
	s.ensemble.Observe(l.Latency.Seconds())
	return nil
}
