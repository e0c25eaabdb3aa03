package features

import (
	"fmt"

	"github.com/kilianp07/carprice/core/model"
)

// Numeric column names of the trained schema.
const (
	ColumnYear      = "Year"
	ColumnKilometer = "Kilometer"
	ColumnEngineCC  = "engine_cc"
	ColumnMaxPower  = "max_power"
	ColumnFuelTank  = "Fuel_Tank_Capacity"
)

// Categorical column prefixes. Indicator columns are named "<prefix>_<value>".
const (
	PrefixMake         = "Make"
	PrefixModel        = "Model"
	PrefixFuelType     = "Fuel Type"
	PrefixTransmission = "Transmission"
	PrefixOwner        = "Owner"
	PrefixColor        = "Color"
)

// Vector is an immutable feature row aligned with its schema.
type Vector struct {
	schema Schema
	values []float64
}

// Schema returns the schema the vector is aligned with.
func (v Vector) Schema() Schema { return v.schema }

// Len returns the number of values.
func (v Vector) Len() int { return len(v.values) }

// At returns the value at position i.
func (v Vector) At(i int) float64 { return v.values[i] }

// Get returns the value of a named column.
func (v Vector) Get(name string) (float64, bool) {
	i, ok := v.schema.Index(name)
	if !ok {
		return 0, false
	}
	return v.values[i], true
}

// Values returns a copy of the values in schema order.
func (v Vector) Values() []float64 { return append([]float64(nil), v.values...) }

// IndicatorName returns the one-hot column name for a categorical value.
func IndicatorName(prefix, value string) string {
	return prefix + "_" + value
}

// Build encodes the vehicle against the schema. Numeric attributes are copied
// into their columns. Every categorical attribute sets at most one indicator
// column to 1; a value whose indicator column is absent from the schema
// leaves the whole group at 0 without error, so catalog values unknown to the
// trained model are tolerated. Numeric columns missing from the schema are
// skipped the same way.
func Build(v model.Vehicle, s Schema) (Vector, error) {
	if !s.valid() {
		return Vector{}, fmt.Errorf("%w: schema not initialised", ErrInvalidSchema)
	}
	values := make([]float64, s.Len())
	set := func(name string, x float64) {
		if i, ok := s.Index(name); ok {
			values[i] = x
		}
	}
	set(ColumnYear, float64(v.Year))
	set(ColumnKilometer, float64(v.OdometerKM))
	set(ColumnEngineCC, float64(v.EngineCC))
	set(ColumnMaxPower, float64(v.MaxPowerBHP))
	set(ColumnFuelTank, float64(v.FuelTankLiters))

	set(IndicatorName(PrefixMake, v.Brand), 1)
	set(IndicatorName(PrefixModel, v.Model), 1)
	set(IndicatorName(PrefixFuelType, string(v.FuelType)), 1)
	set(IndicatorName(PrefixTransmission, string(v.Transmission)), 1)
	set(IndicatorName(PrefixOwner, string(v.Owner)), 1)
	set(IndicatorName(PrefixColor, string(v.Color)), 1)

	return Vector{schema: s, values: values}, nil
}

// FromValues wraps raw values in schema order. It is meant for estimator tests
// and artifact tooling; the length must match the schema.
func FromValues(s Schema, values []float64) (Vector, error) {
	if !s.valid() {
		return Vector{}, fmt.Errorf("%w: schema not initialised", ErrInvalidSchema)
	}
	if len(values) != s.Len() {
		return Vector{}, fmt.Errorf("%w: %d values for %d columns", ErrInvalidSchema, len(values), s.Len())
	}
	return Vector{schema: s, values: append([]float64(nil), values...)}, nil
}
