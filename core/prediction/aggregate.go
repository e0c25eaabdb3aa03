package prediction

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/carprice/core/features"
)

var (
	// ErrEmptyEnsemble is returned when the committee has no members.
	ErrEmptyEnsemble = errors.New("ensemble has no estimators")
	// ErrEstimator wraps the failure of a single committee member.
	ErrEstimator = errors.New("estimator failed")
)

// Aggregate is the committee opinion for one vector. Lower and Upper are one
// population standard deviation around the mean.
type Aggregate struct {
	Mean   float64
	Spread float64
	Lower  float64
	Upper  float64
	Votes  []float64
}

// Summarize reduces votes to their mean and population standard deviation.
func Summarize(votes []float64) (Aggregate, error) {
	if len(votes) == 0 {
		return Aggregate{}, ErrEmptyEnsemble
	}
	mean, std := stat.PopMeanStdDev(votes, nil)
	return Aggregate{
		Mean:   mean,
		Spread: std,
		Lower:  mean - std,
		Upper:  mean + std,
		Votes:  append([]float64(nil), votes...),
	}, nil
}

// Aggregator runs the committee on a bounded pool of goroutines.
type Aggregator struct {
	workers int
}

// NewAggregator returns an Aggregator using at most workers goroutines.
// workers <= 0 evaluates every estimator concurrently.
func NewAggregator(workers int) *Aggregator {
	return &Aggregator{workers: workers}
}

// Aggregate evaluates every estimator on x. The first failing estimator
// aborts the whole evaluation; no partial committee is ever summarised.
// Votes are stored by estimator position, so the result does not depend on
// scheduling.
func (a *Aggregator) Aggregate(ctx context.Context, ens Ensemble, x features.Vector) (Aggregate, error) {
	members := ens.Estimators()
	if len(members) == 0 {
		return Aggregate{}, ErrEmptyEnsemble
	}
	if x.Len() != ens.Schema().Len() {
		return Aggregate{}, fmt.Errorf("%w: vector has %d values, ensemble expects %d",
			features.ErrInvalidSchema, x.Len(), ens.Schema().Len())
	}
	votes := make([]float64, len(members))
	g, gctx := errgroup.WithContext(ctx)
	if a.workers > 0 {
		g.SetLimit(a.workers)
	}
	for i, est := range members {
		g.Go(func() error {
			v, err := est.Predict(gctx, x)
			if err != nil {
				return fmt.Errorf("%w: estimator %d: %w", ErrEstimator, i, err)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: estimator %d returned %v", ErrEstimator, i, v)
			}
			votes[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Aggregate{}, err
	}
	return Summarize(votes)
}
