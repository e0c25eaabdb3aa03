package prediction

import (
	"context"

	"github.com/kilianp07/carprice/core/features"
)

// Estimator is one committee member. Predict returns a price in the currency
// of the calibration constants.
type Estimator interface {
	Predict(ctx context.Context, x features.Vector) (float64, error)
}

// Ensemble is a loaded model: the ordered feature schema it expects and its
// committee of estimators. Implementations are read-only after loading and
// safe for concurrent use.
type Ensemble interface {
	Schema() features.Schema
	Estimators() []Estimator
}
