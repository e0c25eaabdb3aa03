package metrics

import (
	"time"

	"github.com/kilianp07/carprice/core/model"
)

// EstimateEvent records one successful estimate.
type EstimateEvent struct {
	Estimate model.PriceEstimate
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records estimates for observability purposes.
type MetricsSink interface {
	RecordEstimate(ev EstimateEvent) error
}

// Rejection reasons.
const (
	ReasonInvalidVehicle    = "invalid_vehicle"
	ReasonImplausibleEngine = "implausible_engine"
	ReasonFeatureError      = "feature_error"
	ReasonEstimatorError    = "estimator_error"
)

// RejectionEvent records a request that produced no estimate.
type RejectionEvent struct {
	Brand  string
	Model  string
	Reason string
	Time   time.Time
}

// RejectionRecorder records refused or failed requests.
type RejectionRecorder interface {
	RecordRejection(ev RejectionEvent) error
}

// EnsembleLatency is the time spent evaluating the committee.
type EnsembleLatency struct {
	Votes   int
	Latency time.Duration
}

// EnsembleLatencyRecorder is implemented by sinks able to record committee latency.
type EnsembleLatencyRecorder interface {
	RecordEnsembleLatency(l EnsembleLatency) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordEstimate(EstimateEvent) error          { return nil }
func (NopSink) RecordRejection(RejectionEvent) error        { return nil }
func (NopSink) RecordEnsembleLatency(EnsembleLatency) error { return nil }
