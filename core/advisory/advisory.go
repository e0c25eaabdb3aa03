// Package advisory holds plausibility checks run around a prediction. Guards
// reject a request before the ensemble is touched; advisories only annotate
// the result.
package advisory

import (
	"errors"
	"fmt"

	"github.com/kilianp07/carprice/core/model"
)

// ErrImplausibleEngine is returned when a luxury brand is paired with an
// engine too small to be genuine.
var ErrImplausibleEngine = errors.New("engine capacity is unrealistic for the selected luxury brand")

// LuxurySet reports luxury brand membership.
type LuxurySet interface {
	IsLuxury(brand string) bool
}

// CheckLuxuryEngine rejects luxury vehicles whose engine is below minCC.
func CheckLuxuryEngine(v model.Vehicle, luxury LuxurySet, minCC int) error {
	if v.EngineCC < minCC && luxury.IsLuxury(v.Brand) {
		return fmt.Errorf("%w: %s with %d cc", ErrImplausibleEngine, v.Brand, v.EngineCC)
	}
	return nil
}

// LowMileage reports whether the odometer is below age*kmPerYear, in which
// case the estimate may be optimistic.
func LowMileage(age, odometerKM, kmPerYear int) bool {
	return odometerKM < age*kmPerYear
}

// Message texts shown alongside an estimate.
const (
	LowMileageMessage = "Mileage is unusually low for this vehicle age. Prediction may be optimistic."
)

// Messages lists the human readable advisories attached to an estimate.
func Messages(est model.PriceEstimate) []string {
	var out []string
	if est.LowMileageWarning {
		out = append(out, LowMileageMessage)
	}
	return out
}
