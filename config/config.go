package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/carprice/core/metrics"
	"github.com/kilianp07/carprice/infra/monitoring"
	"github.com/kilianp07/carprice/infra/mqtt"
)

type Config struct {
	Model       ModelConfig       `json:"model"`
	Catalog     CatalogConfig     `json:"catalog"`
	Calibration CalibrationConfig `json:"calibration"`
	Server      ServerConfig      `json:"server"`
	Metrics     metrics.Config    `json:"metrics"`
	History     HistoryConfig     `json:"history"`
	MQTT        mqtt.Config       `json:"mqtt"`
	Monitoring  monitoring.Config `json:"monitoring"`
}

// Load reads the configuration file at path, applies K_ environment
// overrides (K_SERVER__ADDRESS sets server.address), fills defaults and
// validates every section. An empty path loads the environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields of every section.
func (c *Config) SetDefaults() {
	c.Model.SetDefaults()
	c.Server.SetDefaults()
	c.History.SetDefaults()
	c.MQTT.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"model", c.Model.Validate()},
		{"calibration", c.Calibration.Validate()},
		{"server", c.Server.Validate()},
		{"history", c.History.Validate()},
		{"mqtt", c.MQTT.Validate()},
		{"monitoring", c.Monitoring.Validate()},
	}
	for _, ch := range checks {
		if ch.err != nil {
			return fmt.Errorf("%s: %w", ch.section, ch.err)
		}
	}
	return nil
}
