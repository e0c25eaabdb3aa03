// Package pricing runs the estimate pipeline: validation, the luxury engine
// guard, feature encoding, committee aggregation, calibration and the
// low-mileage advisory. Requests are served one at a time.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/kilianp07/carprice/core/advisory"
	"github.com/kilianp07/carprice/core/calibration"
	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/events"
	"github.com/kilianp07/carprice/core/features"
	"github.com/kilianp07/carprice/core/logger"
	"github.com/kilianp07/carprice/core/metrics"
	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/monitoring"
	"github.com/kilianp07/carprice/core/prediction"
	"github.com/kilianp07/carprice/core/pricing/history"
	"github.com/kilianp07/carprice/internal/eventbus"
)

// RejectionError reports a request that produced no estimate. Reason is one of
// the metrics.Reason* values.
type RejectionError struct {
	Reason string
	Err    error
}

func (e *RejectionError) Error() string { return e.Err.Error() }

func (e *RejectionError) Unwrap() error { return e.Err }

// IsRejection reports whether err is caused by the request itself rather
// than by a computation failure.
func IsRejection(err error) bool {
	var rej *RejectionError
	if !errors.As(err, &rej) {
		return false
	}
	return rej.Reason == metrics.ReasonInvalidVehicle || rej.Reason == metrics.ReasonImplausibleEngine
}

// Reason returns the rejection reason carried by err, or "" when there is none.
func Reason(err error) string {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

// Service estimates vehicle prices against a fixed catalog and ensemble.
type Service struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	ensemble prediction.Ensemble
	agg      *prediction.Aggregator
	policy   calibration.Policy
	now      func() time.Time
	refYear  int
	workers  int
	sink     metrics.MetricsSink
	store    history.Store
	bus      *eventbus.TypedBus[events.Event]
	log      logger.Logger
}

// Option configures a Service.
type Option func(s *Service)

// WithPolicy overrides the calibration policy.
func WithPolicy(p calibration.Policy) Option { return func(s *Service) { s.policy = p } }

// WithWorkers bounds the number of estimators evaluated concurrently.
func WithWorkers(n int) Option { return func(s *Service) { s.workers = n } }

// WithClock sets the time source used for timestamps and, unless a reference
// year is set, for the vehicle age.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithReferenceYear pins the year vehicle ages are computed against.
func WithReferenceYear(year int) Option { return func(s *Service) { s.refYear = year } }

// WithMetrics sets the metrics sink.
func WithMetrics(sink metrics.MetricsSink) Option { return func(s *Service) { s.sink = sink } }

// WithHistory sets the store receiving one record per request.
func WithHistory(store history.Store) Option { return func(s *Service) { s.store = store } }

// WithEventBus publishes estimate and rejection events on bus.
func WithEventBus(bus *eventbus.TypedBus[events.Event]) Option {
	return func(s *Service) { s.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(s *Service) { s.log = l } }

// New builds a Service. The ensemble schema and the calibration policy are
// checked once here so that requests never see a malformed configuration.
func New(cat *catalog.Catalog, ens prediction.Ensemble, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", catalog.ErrInvalidCatalog)
	}
	if ens == nil || len(ens.Estimators()) == 0 {
		return nil, prediction.ErrEmptyEnsemble
	}
	if ens.Schema().Len() == 0 {
		return nil, fmt.Errorf("%w: empty schema", features.ErrInvalidSchema)
	}
	s := &Service{
		catalog:  cat,
		ensemble: ens,
		policy:   calibration.DefaultPolicy(),
		now:      time.Now,
		sink:     metrics.NopSink{},
		store:    history.NopStore{},
		log:      logger.NopLogger{},
	}
	for _, o := range opts {
		o(s)
	}
	if err := s.policy.Validate(); err != nil {
		return nil, err
	}
	s.agg = prediction.NewAggregator(s.workers)
	return s, nil
}

// Catalog returns the reference data the service validates against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Policy returns the calibration policy in use.
func (s *Service) Policy() calibration.Policy { return s.policy }

// CurrentYear is the year vehicle ages are computed against.
func (s *Service) CurrentYear() int {
	if s.refYear > 0 {
		return s.refYear
	}
	return s.now().Year()
}

// History returns the records matching q.
func (s *Service) History(ctx context.Context, q history.Query) ([]history.Record, error) {
	return s.store.Query(ctx, q)
}

// Estimate prices v. Rejections are returned as *RejectionError before the
// ensemble is consulted.
func (s *Service) Estimate(ctx context.Context, v model.Vehicle) (model.PriceEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := otel.Tracer("core/pricing").Start(ctx, "pricing.estimate")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle.brand", v.Brand), attribute.String("vehicle.model", v.Model))

	start := s.now()
	est, err := s.estimate(ctx, v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.reject(ctx, v, err, start)
		return model.PriceEstimate{}, err
	}
	est.ID = uuid.NewString()
	est.CreatedAt = start
	span.SetAttributes(attribute.Float64("estimate.mean", est.Mean))

	if err := s.sink.RecordEstimate(metrics.EstimateEvent{Estimate: est, Duration: s.now().Sub(start), Time: start}); err != nil {
		s.log.Warnf("record estimate metrics: %v", err)
	}
	if err := s.store.Append(ctx, history.Record{
		ID:        est.ID,
		Timestamp: start,
		Vehicle:   v,
		Estimate:  &est,
		Outcome:   history.OutcomeEstimated,
	}); err != nil {
		s.log.Warnf("append history: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.EstimateEvent{Estimate: est})
	}
	s.log.Debugw("estimate", map[string]any{
		"id":    est.ID,
		"brand": v.Brand,
		"model": v.Model,
		"mean":  est.Mean,
		"lower": est.Lower,
		"upper": est.Upper,
	})
	return est, nil
}

// EstimateRequest resolves r against the catalog and prices the result. A
// request that cannot be resolved is rejected as invalid_vehicle and recorded
// like any other rejection.
func (s *Service) EstimateRequest(ctx context.Context, r Request) (model.PriceEstimate, error) {
	v, err := r.Vehicle(s.catalog)
	if err != nil {
		rej := &RejectionError{Reason: metrics.ReasonInvalidVehicle, Err: err}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reject(ctx, v, rej, s.now())
		return model.PriceEstimate{}, rej
	}
	return s.Estimate(ctx, v)
}

func (s *Service) estimate(ctx context.Context, v model.Vehicle) (model.PriceEstimate, error) {
	year := s.CurrentYear()
	if err := advisory.CheckLuxuryEngine(v, s.catalog, s.policy.MinLuxuryEngineCC); err != nil {
		return model.PriceEstimate{}, &RejectionError{Reason: metrics.ReasonImplausibleEngine, Err: err}
	}
	if err := s.catalog.Validate(v, year); err != nil {
		return model.PriceEstimate{}, &RejectionError{Reason: metrics.ReasonInvalidVehicle, Err: err}
	}
	x, err := features.Build(v, s.ensemble.Schema())
	if err != nil {
		return model.PriceEstimate{}, &RejectionError{Reason: metrics.ReasonFeatureError, Err: err}
	}

	evalStart := time.Now()
	agg, err := s.agg.Aggregate(ctx, s.ensemble, x)
	if err != nil {
		return model.PriceEstimate{}, &RejectionError{Reason: metrics.ReasonEstimatorError, Err: err}
	}
	if rec, ok := s.sink.(metrics.EnsembleLatencyRecorder); ok {
		if err := rec.RecordEnsembleLatency(metrics.EnsembleLatency{Votes: len(agg.Votes), Latency: time.Since(evalStart)}); err != nil {
			s.log.Warnf("record ensemble latency: %v", err)
		}
	}

	est := s.policy.Calibrate(agg, v, year, s.catalog)
	est.LowMileageWarning = advisory.LowMileage(est.Breakdown.Age, v.OdometerKM, s.policy.ExpectedKMPerYear)
	return est, nil
}

func (s *Service) reject(ctx context.Context, v model.Vehicle, err error, at time.Time) {
	reason := Reason(err)
	if reason == "" {
		reason = metrics.ReasonEstimatorError
	}
	if IsRejection(err) {
		s.log.Warnf("rejected %s %s: %v", v.Brand, v.Model, err)
	} else {
		s.log.Errorf("estimate %s %s: %v", v.Brand, v.Model, err)
		monitoring.CaptureError(err, map[string]string{"brand": v.Brand, "model": v.Model, "reason": reason})
	}
	if rec, ok := s.sink.(metrics.RejectionRecorder); ok {
		if rerr := rec.RecordRejection(metrics.RejectionEvent{Brand: v.Brand, Model: v.Model, Reason: reason, Time: at}); rerr != nil {
			s.log.Warnf("record rejection metrics: %v", rerr)
		}
	}
	if aerr := s.store.Append(ctx, history.Record{
		ID:        uuid.NewString(),
		Timestamp: at,
		Vehicle:   v,
		Outcome:   history.OutcomeRejected,
		Reason:    reason,
	}); aerr != nil {
		s.log.Warnf("append history: %v", aerr)
	}
	if s.bus != nil {
		s.bus.Publish(events.RejectionEvent{Vehicle: v, Reason: reason, Message: err.Error(), Time: at})
	}
}
