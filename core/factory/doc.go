// Package factory provides a small generic registry used to instantiate modules
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the settings into its own typed
// struct and returns the implementation.
//
// Ensemble backends and metrics sinks are both created this way:
//
//	reg := factory.NewRegistry[prediction.Ensemble]()
//	reg.Register("forest", func(conf map[string]any) (prediction.Ensemble, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return forest.Load(c.Path)
//	})
//	ens, err := reg.Create(factory.ModuleConfig{Type: "forest", Conf: map[string]any{"path": "model.json"}})
package factory
