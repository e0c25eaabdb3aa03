package config

import (
	"fmt"

	"github.com/kilianp07/carprice/core/calibration"
	"github.com/kilianp07/carprice/core/factory"
)

// ModelConfig selects the ensemble backend.
type ModelConfig struct {
	// Type is a registered backend: "forest" or "mock".
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
	// Workers bounds concurrent estimator evaluation; 0 runs them all at once.
	Workers int `json:"workers"`
}

func (c *ModelConfig) SetDefaults() {
	if c.Conf == nil {
		c.Conf = map[string]any{}
	}
}

func (c ModelConfig) Validate() error {
	if c.Type == "" {
		return fmt.Errorf("type is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// Module returns the backend as a factory module.
func (c ModelConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// CatalogConfig points at an optional reference data override.
type CatalogConfig struct {
	Path string `json:"path"`
}

// CalibrationConfig overrides the calibration constants. Zero values keep
// the built-in policy.
type CalibrationConfig struct {
	// ReferenceYear pins the year ages are computed against; 0 uses the clock.
	ReferenceYear      int                       `json:"reference_year"`
	AnnualDepreciation float64                   `json:"annual_depreciation"`
	ResidualFloor      float64                   `json:"residual_floor"`
	MileageBands       []calibration.MileageBand `json:"mileage_bands"`
	ExpectedKMPerYear  int                       `json:"expected_km_per_year"`
	MinLuxuryEngineCC  int                       `json:"min_luxury_engine_cc"`
}

// Policy merges the overrides into the default policy.
func (c CalibrationConfig) Policy() calibration.Policy {
	p := calibration.DefaultPolicy()
	if c.AnnualDepreciation != 0 {
		p.AnnualDepreciation = c.AnnualDepreciation
	}
	if c.ResidualFloor != 0 {
		p.ResidualFloor = c.ResidualFloor
	}
	if len(c.MileageBands) > 0 {
		p.MileageBands = c.MileageBands
	}
	if c.ExpectedKMPerYear != 0 {
		p.ExpectedKMPerYear = c.ExpectedKMPerYear
	}
	if c.MinLuxuryEngineCC != 0 {
		p.MinLuxuryEngineCC = c.MinLuxuryEngineCC
	}
	return p
}

func (c CalibrationConfig) Validate() error {
	if c.ReferenceYear < 0 {
		return fmt.Errorf("reference_year must not be negative")
	}
	return c.Policy().Validate()
}
