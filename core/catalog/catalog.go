package catalog

import (
	"errors"
	"fmt"

	"github.com/kilianp07/carprice/core/model"
)

// ErrInvalidCatalog is returned when reference data is inconsistent.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Specs are the default technical specifications suggested for a brand.
type Specs struct {
	EngineCC       int `yaml:"engine_cc" json:"engine_cc"`
	MaxPowerBHP    int `yaml:"max_power_bhp" json:"max_power_bhp"`
	FuelTankLiters int `yaml:"fuel_tank_liters" json:"fuel_tank_liters"`
}

// Brand is one catalog entry.
type Brand struct {
	Name      string   `yaml:"name" json:"name"`
	Models    []string `yaml:"models" json:"models"`
	Defaults  Specs    `yaml:"defaults" json:"defaults"`
	Luxury    bool     `yaml:"luxury" json:"luxury"`
	LuxuryCap float64  `yaml:"luxury_cap,omitempty" json:"luxury_cap,omitempty"`
}

// Bracket caps prices for engines up to MaxEngineCC (inclusive).
type Bracket struct {
	MaxEngineCC int     `yaml:"max_engine_cc" json:"max_engine_cc"`
	Cap         float64 `yaml:"cap" json:"cap"`
}

// PriceCaps bounds plausible prices by engine size. Engines above the last
// bracket use the brand's LuxuryCap or DefaultLuxuryCap.
type PriceCaps struct {
	Brackets         []Bracket `yaml:"brackets" json:"brackets"`
	DefaultLuxuryCap float64   `yaml:"default_luxury_cap" json:"default_luxury_cap"`
	FloorRatio       float64   `yaml:"floor_ratio" json:"floor_ratio"`
}

// Limits are the accepted ranges of numeric vehicle attributes. The upper year
// bound is always the current year.
type Limits struct {
	MinYear       int `yaml:"min_year" json:"min_year"`
	MaxOdometerKM int `yaml:"max_odometer_km" json:"max_odometer_km"`
	MinEngineCC   int `yaml:"min_engine_cc" json:"min_engine_cc"`
	MaxEngineCC   int `yaml:"max_engine_cc" json:"max_engine_cc"`
	MinPowerBHP   int `yaml:"min_power_bhp" json:"min_power_bhp"`
	MaxPowerBHP   int `yaml:"max_power_bhp" json:"max_power_bhp"`
	MinFuelTankL  int `yaml:"min_fuel_tank_liters" json:"min_fuel_tank_liters"`
	MaxFuelTankL  int `yaml:"max_fuel_tank_liters" json:"max_fuel_tank_liters"`
}

// Catalog is the immutable reference dataset.
type Catalog struct {
	brands []Brand
	index  map[string]int
	caps   PriceCaps
	limits Limits
}

// New validates the tables and builds a Catalog. The inputs are copied.
func New(brands []Brand, caps PriceCaps, limits Limits) (*Catalog, error) {
	if len(brands) == 0 {
		return nil, fmt.Errorf("%w: no brands", ErrInvalidCatalog)
	}
	c := &Catalog{index: make(map[string]int, len(brands)), limits: limits}
	for _, b := range brands {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: brand without name", ErrInvalidCatalog)
		}
		if _, dup := c.index[b.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate brand %s", ErrInvalidCatalog, b.Name)
		}
		if len(b.Models) == 0 {
			return nil, fmt.Errorf("%w: brand %s has no models", ErrInvalidCatalog, b.Name)
		}
		b.Models = append([]string(nil), b.Models...)
		c.index[b.Name] = len(c.brands)
		c.brands = append(c.brands, b)
	}
	prev := -1
	for _, br := range caps.Brackets {
		if br.MaxEngineCC <= prev || br.Cap <= 0 {
			return nil, fmt.Errorf("%w: price brackets must be ascending with positive caps", ErrInvalidCatalog)
		}
		prev = br.MaxEngineCC
	}
	if caps.DefaultLuxuryCap <= 0 {
		return nil, fmt.Errorf("%w: default luxury cap must be positive", ErrInvalidCatalog)
	}
	if caps.FloorRatio < 0 || caps.FloorRatio > 1 {
		return nil, fmt.Errorf("%w: floor ratio must be within [0,1]", ErrInvalidCatalog)
	}
	c.caps = PriceCaps{
		Brackets:         append([]Bracket(nil), caps.Brackets...),
		DefaultLuxuryCap: caps.DefaultLuxuryCap,
		FloorRatio:       caps.FloorRatio,
	}
	return c, nil
}

// Brands returns brand names in catalog order.
func (c *Catalog) Brands() []string {
	out := make([]string, len(c.brands))
	for i, b := range c.brands {
		out[i] = b.Name
	}
	return out
}

// Brand returns a copy of the named entry.
func (c *Catalog) Brand(name string) (Brand, bool) {
	i, ok := c.index[name]
	if !ok {
		return Brand{}, false
	}
	b := c.brands[i]
	b.Models = append([]string(nil), b.Models...)
	return b, true
}

// Models returns the models offered for brand, or nil for an unknown brand.
func (c *Catalog) Models(brand string) []string {
	b, ok := c.Brand(brand)
	if !ok {
		return nil
	}
	return b.Models
}

// Defaults returns the suggested specifications for brand.
func (c *Catalog) Defaults(brand string) (Specs, bool) {
	b, ok := c.Brand(brand)
	return b.Defaults, ok
}

// IsLuxury reports whether brand belongs to the luxury set.
func (c *Catalog) IsLuxury(brand string) bool {
	i, ok := c.index[brand]
	return ok && c.brands[i].Luxury
}

// Transmissions lists the transmissions a brand can be ordered with. Luxury
// brands are automatic only.
func (c *Catalog) Transmissions(brand string) []model.Transmission {
	if c.IsLuxury(brand) {
		return []model.Transmission{model.TransmissionAutomatic}
	}
	return append([]model.Transmission(nil), model.Transmissions...)
}

// Limits returns the numeric input limits.
func (c *Catalog) Limits() Limits { return c.limits }

// FloorRatio is the share of the cap used as the lower bound of the band.
func (c *Catalog) FloorRatio() float64 { return c.caps.FloorRatio }

// PriceCap returns the ceiling for a brand and engine size.
func (c *Catalog) PriceCap(brand string, engineCC int) float64 {
	for _, br := range c.caps.Brackets {
		if engineCC <= br.MaxEngineCC {
			return br.Cap
		}
	}
	if i, ok := c.index[brand]; ok && c.brands[i].LuxuryCap > 0 {
		return c.brands[i].LuxuryCap
	}
	return c.caps.DefaultLuxuryCap
}

func inRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %d outside [%d, %d]", model.ErrInvalidVehicle, name, v, lo, hi)
	}
	return nil
}

// Validate checks that v references a known brand and model, respects the
// luxury transmission restriction and stays within the input limits.
func (c *Catalog) Validate(v model.Vehicle, currentYear int) error {
	b, ok := c.Brand(v.Brand)
	if !ok {
		return fmt.Errorf("%w: unknown brand %q", model.ErrInvalidVehicle, v.Brand)
	}
	found := false
	for _, m := range b.Models {
		if m == v.Model {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: model %q is not offered by %s", model.ErrInvalidVehicle, v.Model, v.Brand)
	}
	if err := v.ValidateEnums(); err != nil {
		return err
	}
	if b.Luxury && v.Transmission == model.TransmissionManual {
		return fmt.Errorf("%w: %s is only available with automatic transmission", model.ErrInvalidVehicle, v.Brand)
	}
	l := c.limits
	checks := []error{
		inRange("year", v.Year, l.MinYear, currentYear),
		inRange("odometer_km", v.OdometerKM, 0, l.MaxOdometerKM),
		inRange("engine_cc", v.EngineCC, l.MinEngineCC, l.MaxEngineCC),
		inRange("max_power_bhp", v.MaxPowerBHP, l.MinPowerBHP, l.MaxPowerBHP),
		inRange("fuel_tank_liters", v.FuelTankLiters, l.MinFuelTankL, l.MaxFuelTankL),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}
