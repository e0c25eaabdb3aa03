package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type fileFormat struct {
	Brands    []Brand    `yaml:"brands"`
	PriceCaps *PriceCaps `yaml:"price_caps,omitempty"`
	Limits    *Limits    `yaml:"limits,omitempty"`
}

// Load reads a YAML catalog. Missing price_caps or limits sections fall back
// to the built-in tables.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	caps := DefaultPriceCaps()
	if f.PriceCaps != nil {
		caps = *f.PriceCaps
	}
	limits := DefaultLimits()
	if f.Limits != nil {
		limits = *f.Limits
	}
	return New(f.Brands, caps, limits)
}
