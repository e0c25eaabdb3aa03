package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/model"
)

// Request is a loosely typed vehicle description as received from a form,
// a JSON body or command line flags. Zero numeric specs are filled from the
// brand defaults, an empty transmission takes the first one the brand is
// offered with, and categorical values are matched case-insensitively.
type Request struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	OdometerKM     int    `json:"odometer_km"`
	EngineCC       int    `json:"engine_cc,omitempty"`
	MaxPowerBHP    int    `json:"max_power_bhp,omitempty"`
	FuelTankLiters int    `json:"fuel_tank_liters,omitempty"`
	Transmission   string `json:"transmission"`
	FuelType       string `json:"fuel_type"`
	Owner          string `json:"owner"`
	Color          string `json:"color"`
}

// Vehicle resolves r against cat. Every problem is reported at once, each
// wrapping model.ErrInvalidVehicle.
func (r Request) Vehicle(cat *catalog.Catalog) (model.Vehicle, error) {
	v := model.Vehicle{
		Brand:          strings.TrimSpace(r.Brand),
		Model:          strings.TrimSpace(r.Model),
		Year:           r.Year,
		OdometerKM:     r.OdometerKM,
		EngineCC:       r.EngineCC,
		MaxPowerBHP:    r.MaxPowerBHP,
		FuelTankLiters: r.FuelTankLiters,
	}
	if d, ok := cat.Defaults(v.Brand); ok {
		if v.EngineCC == 0 {
			v.EngineCC = d.EngineCC
		}
		if v.MaxPowerBHP == 0 {
			v.MaxPowerBHP = d.MaxPowerBHP
		}
		if v.FuelTankLiters == 0 {
			v.FuelTankLiters = d.FuelTankLiters
		}
	}

	var errs []error
	var err error
	if strings.TrimSpace(r.Transmission) == "" {
		v.Transmission = cat.Transmissions(v.Brand)[0]
	} else if v.Transmission, err = model.ParseTransmission(r.Transmission); err != nil {
		errs = append(errs, err)
	}
	if v.FuelType, err = model.ParseFuelType(r.FuelType); err != nil {
		errs = append(errs, err)
	}
	if v.Owner, err = model.ParseOwner(r.Owner); err != nil {
		errs = append(errs, err)
	}
	if v.Color, err = model.ParseColor(r.Color); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return v, fmt.Errorf("resolve vehicle: %w", errors.Join(errs...))
	}
	return v, nil
}
