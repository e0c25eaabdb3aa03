package prediction

import (
	"context"

	"github.com/kilianp07/carprice/core/features"
)

// FixedEstimator always votes the same price.
type FixedEstimator float64

// Predict returns the fixed vote.
func (f FixedEstimator) Predict(context.Context, features.Vector) (float64, error) {
	return float64(f), nil
}

// FailingEstimator always fails with Err.
type FailingEstimator struct{ Err error }

// Predict returns the configured error.
func (f FailingEstimator) Predict(context.Context, features.Vector) (float64, error) {
	return 0, f.Err
}

// MockEnsemble is a deterministic committee used for tests and demos.
type MockEnsemble struct {
	schema  features.Schema
	members []Estimator
}

// NewMockEnsemble returns a committee voting the given prices.
func NewMockEnsemble(schema features.Schema, votes ...float64) *MockEnsemble {
	members := make([]Estimator, len(votes))
	for i, v := range votes {
		members[i] = FixedEstimator(v)
	}
	return &MockEnsemble{schema: schema, members: members}
}

// NewEnsemble wraps arbitrary estimators.
func NewEnsemble(schema features.Schema, members ...Estimator) *MockEnsemble {
	return &MockEnsemble{schema: schema, members: append([]Estimator(nil), members...)}
}

// Schema returns the configured schema.
func (m *MockEnsemble) Schema() features.Schema { return m.schema }

// Estimators returns a copy of the committee.
func (m *MockEnsemble) Estimators() []Estimator {
	return append([]Estimator(nil), m.members...)
}
