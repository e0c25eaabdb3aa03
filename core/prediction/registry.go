package prediction

import (
	"fmt"

	"github.com/kilianp07/carprice/core/factory"
	"github.com/kilianp07/carprice/core/features"
)

var ensembleRegistry = factory.NewRegistry[Ensemble]()

// RegisterEnsemble adds an ensemble backend identified by name.
func RegisterEnsemble(name string, f factory.Factory[Ensemble]) error {
	return ensembleRegistry.Register(name, f)
}

// LoadEnsemble creates the configured ensemble backend.
func LoadEnsemble(cfg factory.ModuleConfig) (Ensemble, error) {
	ens, err := ensembleRegistry.Create(cfg)
	if err != nil {
		return nil, err
	}
	if ens.Schema().Len() == 0 {
		return nil, fmt.Errorf("%w: backend %s returned an empty schema", features.ErrInvalidSchema, cfg.Type)
	}
	if len(ens.Estimators()) == 0 {
		return nil, fmt.Errorf("backend %s: %w", cfg.Type, ErrEmptyEnsemble)
	}
	return ens, nil
}

// EnsembleBackends lists the registered backend names.
func EnsembleBackends() []string { return ensembleRegistry.Names() }

func init() {
	_ = RegisterEnsemble("mock", func(conf map[string]any) (Ensemble, error) {
		var c struct {
			Columns []string  `json:"columns"`
			Votes   []float64 `json:"votes"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		schema, err := features.NewSchema(c.Columns)
		if err != nil {
			return nil, err
		}
		return NewMockEnsemble(schema, c.Votes...), nil
	})
}
