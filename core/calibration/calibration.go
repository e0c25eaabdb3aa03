// Package calibration turns a raw committee opinion into a market-realistic
// price band: an age depreciation, a mileage multiplier and a brand/engine
// price cap, applied in that order.
package calibration

import (
	"fmt"
	"math"

	"github.com/kilianp07/carprice/core/model"
	"github.com/kilianp07/carprice/core/prediction"
)

// MileageBand applies Multiplier to odometers strictly above AboveKM.
type MileageBand struct {
	AboveKM    int     `json:"above_km"`
	Multiplier float64 `json:"multiplier"`
}

// Policy holds the calibration constants.
type Policy struct {
	// AnnualDepreciation is the share of value lost per year of age.
	AnnualDepreciation float64 `json:"annual_depreciation"`
	// ResidualFloor is the minimum age factor.
	ResidualFloor float64 `json:"residual_floor"`
	// MileageBands are evaluated by descending AboveKM; the first match wins.
	MileageBands []MileageBand `json:"mileage_bands"`
	// ExpectedKMPerYear is the yearly distance below which the low mileage
	// advisory is raised.
	ExpectedKMPerYear int `json:"expected_km_per_year"`
	// MinLuxuryEngineCC is the smallest plausible engine for a luxury brand.
	MinLuxuryEngineCC int `json:"min_luxury_engine_cc"`
}

// DefaultPolicy returns the market calibration constants.
func DefaultPolicy() Policy {
	return Policy{
		AnnualDepreciation: 0.06,
		ResidualFloor:      0.35,
		MileageBands: []MileageBand{
			{AboveKM: 150_000, Multiplier: 0.70},
			{AboveKM: 100_000, Multiplier: 0.80},
			{AboveKM: 60_000, Multiplier: 0.90},
		},
		ExpectedKMPerYear: 3000,
		MinLuxuryEngineCC: 1000,
	}
}

// Validate checks that the constants keep factors within (0, 1].
func (p Policy) Validate() error {
	if p.AnnualDepreciation < 0 || p.AnnualDepreciation >= 1 {
		return fmt.Errorf("annual_depreciation must be within [0,1)")
	}
	if p.ResidualFloor <= 0 || p.ResidualFloor > 1 {
		return fmt.Errorf("residual_floor must be within (0,1]")
	}
	prev := math.MaxInt
	for _, b := range p.MileageBands {
		if b.AboveKM >= prev {
			return fmt.Errorf("mileage_bands must be sorted by descending above_km")
		}
		if b.Multiplier <= 0 || b.Multiplier > 1 {
			return fmt.Errorf("mileage multiplier %v must be within (0,1]", b.Multiplier)
		}
		prev = b.AboveKM
	}
	if p.ExpectedKMPerYear < 0 {
		return fmt.Errorf("expected_km_per_year must not be negative")
	}
	return nil
}

// AgeFactor is the linear residual value after age years, floored at ResidualFloor.
// A negative age is treated as a new vehicle.
func (p Policy) AgeFactor(age int) float64 {
	if age < 0 {
		age = 0
	}
	return math.Max(p.ResidualFloor, 1-float64(age)*p.AnnualDepreciation)
}

// MileageMultiplier returns the multiplier of the first band the odometer
// exceeds, or 1. Bands do not stack.
func (p Policy) MileageMultiplier(odometerKM int) float64 {
	for _, b := range p.MileageBands {
		if odometerKM > b.AboveKM {
			return b.Multiplier
		}
	}
	return 1
}

// Depreciation is the combined age and mileage factor.
func (p Policy) Depreciation(age, odometerKM int) float64 {
	return p.AgeFactor(age) * p.MileageMultiplier(odometerKM)
}

// Capper supplies the price ceiling and the floor ratio of the band.
type Capper interface {
	PriceCap(brand string, engineCC int) float64
	FloorRatio() float64
}

// Calibrate depreciates the committee band and clamps it to the brand/engine
// cap: the mean is capped, the lower bound is raised to the cap floor and the
// upper bound is capped. The band is then widened to contain the mean, which
// keeps 0 <= lower <= mean <= upper <= cap even when the floor overtakes a
// heavily depreciated band. Advisory flags are left to the caller.
func (p Policy) Calibrate(agg prediction.Aggregate, v model.Vehicle, currentYear int, caps Capper) model.PriceEstimate {
	age := v.Age(currentYear)
	ageFactor := p.AgeFactor(age)
	mileage := p.MileageMultiplier(v.OdometerKM)
	factor := ageFactor * mileage

	mean := agg.Mean * factor
	lower := agg.Lower * factor
	upper := agg.Upper * factor

	ceiling := caps.PriceCap(v.Brand, v.EngineCC)
	mean = math.Min(mean, ceiling)
	lower = math.Max(lower, ceiling*caps.FloorRatio())
	upper = math.Min(upper, ceiling)

	mean = math.Max(mean, 0)
	lower = math.Max(math.Min(lower, mean), 0)
	upper = math.Max(upper, mean)

	return model.PriceEstimate{
		Vehicle:  v,
		Mean:     mean,
		Lower:    lower,
		Upper:    upper,
		Currency: model.Currency,
		Breakdown: model.Breakdown{
			RawMean:           agg.Mean,
			Spread:            agg.Spread,
			Votes:             len(agg.Votes),
			Age:               age,
			AgeFactor:         ageFactor,
			MileageMultiplier: mileage,
			Factor:            factor,
			Cap:               ceiling,
		},
	}
}
