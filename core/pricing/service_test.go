package pricing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/carprice/core/advisory"
	"github.com/kilianp07/carprice/core/calibration"
	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/events"
	"github.com/kilianp07/carprice/core/features"
	"github.com/kilianp07/carprice/core/metrics"
	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/monitoring"
	"github.com/kilianp07/carprice/core/prediction"
	"github.com/kilianp07/carprice/core/pricing/history"
	"github.com/kilianp07/carprice/internal/eventbus"
)

const refYear = 2026

var schema = features.MustSchema(
	features.ColumnYear, features.ColumnKilometer, features.ColumnEngineCC,
	"Make_Maruti", "Make_Ferrari", "Transmission_Manual",
)

type recordingSink struct {
	estimates  []metrics.EstimateEvent
	rejections []metrics.RejectionEvent
	latencies  []metrics.EnsembleLatency
}

func (r *recordingSink) RecordEstimate(ev metrics.EstimateEvent) error {
	r.estimates = append(r.estimates, ev)
	return nil
}

func (r *recordingSink) RecordRejection(ev metrics.RejectionEvent) error {
	r.rejections = append(r.rejections, ev)
	return nil
}

func (r *recordingSink) RecordEnsembleLatency(l metrics.EnsembleLatency) error {
	r.latencies = append(r.latencies, l)
	return nil
}

type memStore struct{ recs []history.Record }

func (m *memStore) Append(_ context.Context, r history.Record) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(context.Context, history.Query) ([]history.Record, error) {
	return m.recs, nil
}

func (m *memStore) Close() error { return nil }

// countingEstimator records how often it is consulted.
type countingEstimator struct{ calls *int }

func (c countingEstimator) Predict(context.Context, features.Vector) (float64, error) {
	*c.calls++
	return 50_000, nil
}

func swift() model.Vehicle {
	return model.Vehicle{
		Brand:          "Maruti",
		Model:          "Swift",
		Year:           2018,
		OdometerKM:     50_000,
		EngineCC:       1200,
		MaxPowerBHP:    82,
		FuelTankLiters: 37,
		Transmission:   model.TransmissionManual,
		FuelType:       model.FuelPetrol,
		Owner:          model.OwnerFirst,
		Color:          model.ColorWhite,
	}
}

func newService(t *testing.T, ens prediction.Ensemble, opts ...Option) *Service {
	t.Helper()
	opts = append([]Option{WithReferenceYear(refYear)}, opts...)
	s, err := New(catalog.Default(), ens, opts...)
	require.NoError(t, err)
	return s
}

func TestEstimate_ReferenceScenario(t *testing.T) {
	sink := &recordingSink{}
	store := &memStore{}
	s := newService(t, prediction.NewMockEnsemble(schema, 18000, 19000, 20000),
		WithMetrics(sink), WithHistory(store))

	est, err := s.Estimate(context.Background(), swift())
	require.NoError(t, err)

	assert.InDelta(t, 19000, est.Breakdown.RawMean, 1e-9)
	assert.InDelta(t, 816.4966, est.Breakdown.Spread, 1e-3)
	assert.Equal(t, 8, est.Breakdown.Age)
	depreciation := math.Max(0.35, 1-8*0.06)
	assert.InDelta(t, depreciation, est.Breakdown.Factor, 1e-12)
	assert.Equal(t, 20000.0, est.Breakdown.Cap)
	assert.InDelta(t, math.Min(19000*depreciation, 20000), est.Mean, 1e-9)
	assert.LessOrEqual(t, est.Lower, est.Mean)
	assert.LessOrEqual(t, est.Mean, est.Upper)
	assert.LessOrEqual(t, est.Upper, 20000.0)
	assert.False(t, est.LowMileageWarning)
	assert.Equal(t, model.Currency, est.Currency)
	assert.NotEmpty(t, est.ID)

	require.Len(t, sink.estimates, 1)
	require.Len(t, sink.latencies, 1)
	assert.Equal(t, 3, sink.latencies[0].Votes)
	require.Len(t, store.recs, 1)
	assert.Equal(t, history.OutcomeEstimated, store.recs[0].Outcome)
	assert.Equal(t, est.ID, store.recs[0].ID)
}

func TestEstimate_Repeatable(t *testing.T) {
	s := newService(t, prediction.NewMockEnsemble(schema, 18000, 19000, 20000), WithWorkers(2))
	a, err := s.Estimate(context.Background(), swift())
	require.NoError(t, err)
	b, err := s.Estimate(context.Background(), swift())
	require.NoError(t, err)
	assert.Equal(t, a.Mean, b.Mean)
	assert.Equal(t, a.Lower, b.Lower)
	assert.Equal(t, a.Upper, b.Upper)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEstimate_LuxuryEngineRejectedBeforePrediction(t *testing.T) {
	calls := 0
	sink := &recordingSink{}
	store := &memStore{}
	bus := eventbus.NewTyped[events.Event](4)
	sub := bus.Subscribe()
	ens := prediction.NewEnsemble(schema, countingEstimator{&calls}, countingEstimator{&calls})
	s := newService(t, ens, WithMetrics(sink), WithHistory(store), WithEventBus(bus))

	v := model.Vehicle{
		Brand: "Ferrari", Model: "488 Gtb", Year: 2020, OdometerKM: 10_000,
		EngineCC: 900, MaxPowerBHP: 600, FuelTankLiters: 78,
		Transmission: model.TransmissionAutomatic, FuelType: model.FuelPetrol,
		Owner: model.OwnerFirst, Color: model.ColorRed,
	}
	_, err := s.Estimate(context.Background(), v)
	require.Error(t, err)
	assert.ErrorIs(t, err, advisory.ErrImplausibleEngine)
	assert.True(t, IsRejection(err))
	assert.Equal(t, metrics.ReasonImplausibleEngine, Reason(err))
	assert.Zero(t, calls)

	assert.Empty(t, sink.estimates)
	require.Len(t, sink.rejections, 1)
	assert.Equal(t, metrics.ReasonImplausibleEngine, sink.rejections[0].Reason)
	require.Len(t, store.recs, 1)
	assert.Equal(t, history.OutcomeRejected, store.recs[0].Outcome)

	ev := <-sub
	rej, ok := ev.(events.RejectionEvent)
	require.True(t, ok)
	assert.Equal(t, "Ferrari", rej.Vehicle.Brand)
}

func TestEstimate_HighMileageStacksOnAge(t *testing.T) {
	s := newService(t, prediction.NewMockEnsemble(schema, 10000, 10000))
	v := swift()
	v.Year = refYear - 10
	v.OdometerKM = 200_000

	est, err := s.Estimate(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, 10, est.Breakdown.Age)
	assert.Equal(t, 0.70, est.Breakdown.MileageMultiplier)
	assert.Equal(t, est.Breakdown.AgeFactor*0.70, est.Breakdown.Factor)
	assert.InDelta(t, 0.4*0.7, est.Breakdown.Factor, 1e-12)
}

func TestEstimate_LowMileageAdvisory(t *testing.T) {
	s := newService(t, prediction.NewMockEnsemble(schema, 15000))
	v := swift()
	v.OdometerKM = 5000

	est, err := s.Estimate(context.Background(), v)
	require.NoError(t, err)
	assert.True(t, est.LowMileageWarning)
	assert.Equal(t, []string{advisory.LowMileageMessage}, advisory.Messages(est))

	v.OdometerKM = 50_000
	plain, err := s.Estimate(context.Background(), v)
	require.NoError(t, err)
	assert.Greater(t, est.Mean, 0.0)
	assert.Equal(t, plain.Breakdown.RawMean, est.Breakdown.RawMean)
}

func TestEstimate_InvalidVehicle(t *testing.T) {
	s := newService(t, prediction.NewMockEnsemble(schema, 15000))
	v := swift()
	v.Model = "Model T"

	_, err := s.Estimate(context.Background(), v)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidVehicle)
	assert.True(t, IsRejection(err))
	assert.Equal(t, metrics.ReasonInvalidVehicle, Reason(err))
}

func TestEstimate_EstimatorFailureIsFatal(t *testing.T) {
	boom := errors.New("corrupt tree")
	ens := prediction.NewEnsemble(schema, prediction.FixedEstimator(1), prediction.FailingEstimator{Err: boom})
	sink := &recordingSink{}
	s := newService(t, ens, WithMetrics(sink))
	reported := &capturingReporter{}
	monitoring.SetReporter(reported)
	defer monitoring.SetReporter(nil)

	_, err := s.Estimate(context.Background(), swift())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.Len(t, reported.errs, 1)
	assert.Equal(t, "Maruti", reported.tags["brand"])
	assert.False(t, IsRejection(err))
	assert.Equal(t, metrics.ReasonEstimatorError, Reason(err))
	require.Len(t, sink.rejections, 1)
	assert.Equal(t, metrics.ReasonEstimatorError, sink.rejections[0].Reason)

	_, err = s.Estimate(context.Background(), model.Vehicle{Brand: "Maruti", Model: "Gypsy"})
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.Len(t, reported.errs, 1, "rejections are not reported")
}

// vanishingSchemaEnsemble serves a usable schema once, at construction, and
// an uninitialised one afterwards.
type vanishingSchemaEnsemble struct {
	prediction.Ensemble
	calls *int
}

func (e vanishingSchemaEnsemble) Schema() features.Schema {
	*e.calls++
	if *e.calls > 1 {
		return features.Schema{}
	}
	return e.Ensemble.Schema()
}

func TestEstimate_FeatureErrorHasOwnReason(t *testing.T) {
	calls := 0
	ens := vanishingSchemaEnsemble{Ensemble: prediction.NewMockEnsemble(schema, 15000), calls: &calls}
	sink := &recordingSink{}
	s := newService(t, ens, WithMetrics(sink))
	monitoring.SetReporter(&capturingReporter{})
	defer monitoring.SetReporter(nil)

	_, err := s.Estimate(context.Background(), swift())
	require.Error(t, err)
	assert.ErrorIs(t, err, features.ErrInvalidSchema)
	assert.False(t, IsRejection(err))
	assert.Equal(t, metrics.ReasonFeatureError, Reason(err))
	require.Len(t, sink.rejections, 1)
	assert.Equal(t, metrics.ReasonFeatureError, sink.rejections[0].Reason)
}

func TestEstimateRequest_UnresolvedIsRecorded(t *testing.T) {
	sink := &recordingSink{}
	store := &memStore{}
	s := newService(t, prediction.NewMockEnsemble(schema, 15000), WithMetrics(sink), WithHistory(store))

	req := Request{Brand: "Maruti", Model: "Swift", Year: 2018, FuelType: "Steam", Owner: "First Owner", Color: "White"}
	_, err := s.EstimateRequest(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidVehicle)
	assert.True(t, IsRejection(err))
	assert.Equal(t, metrics.ReasonInvalidVehicle, Reason(err))
	require.Len(t, sink.rejections, 1)
	assert.Equal(t, metrics.ReasonInvalidVehicle, sink.rejections[0].Reason)
	require.Len(t, store.recs, 1)
	assert.Equal(t, history.OutcomeRejected, store.recs[0].Outcome)
	assert.Equal(t, "Swift", store.recs[0].Vehicle.Model)
}

func TestEstimateRequest_LuxuryDefaultsToAutomatic(t *testing.T) {
	s := newService(t, prediction.NewMockEnsemble(schema, 40000))
	req := Request{Brand: "BMW", Model: "X5", Year: 2020, OdometerKM: 30_000, FuelType: "Diesel", Owner: "First Owner", Color: "Black"}
	est, err := s.EstimateRequest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, model.TransmissionAutomatic, est.Vehicle.Transmission)
	assert.Equal(t, 3000, est.Vehicle.EngineCC)
}

type capturingReporter struct {
	monitoring.NopReporter
	errs []error
	tags map[string]string
}

func (c *capturingReporter) CaptureError(err error, tags map[string]string) {
	c.errs = append(c.errs, err)
	c.tags = tags
}

func TestEstimate_PublishesEvent(t *testing.T) {
	bus := eventbus.NewTyped[events.Event](1)
	sub := bus.Subscribe()
	s := newService(t, prediction.NewMockEnsemble(schema, 15000), WithEventBus(bus))

	est, err := s.Estimate(context.Background(), swift())
	require.NoError(t, err)
	ev := <-sub
	got, ok := ev.(events.EstimateEvent)
	require.True(t, ok)
	assert.Equal(t, est.ID, got.Estimate.ID)
}

func TestService_CurrentYearFromClock(t *testing.T) {
	s, err := New(catalog.Default(), prediction.NewMockEnsemble(schema, 1),
		WithClock(func() time.Time { return time.Date(2031, 1, 2, 0, 0, 0, 0, time.UTC) }))
	require.NoError(t, err)
	assert.Equal(t, 2031, s.CurrentYear())
}

func TestNew_RejectsBadSetup(t *testing.T) {
	_, err := New(catalog.Default(), prediction.NewMockEnsemble(schema))
	assert.ErrorIs(t, err, prediction.ErrEmptyEnsemble)

	p := calibration.DefaultPolicy()
	p.ResidualFloor = 2
	_, err = New(catalog.Default(), prediction.NewMockEnsemble(schema, 1), WithPolicy(p))
	assert.Error(t, err)
}
