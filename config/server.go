package config

import "fmt"

// ServerConfig defines the HTTP API settings.
type ServerConfig struct {
	Address string `json:"address"`
	// RateLimit is the sustained number of requests per second per client.
	RateLimit  float64 `json:"rate_limit"`
	Burst      int     `json:"burst"`
	CORSOrigin string  `json:"cors_origin"`
}

func (c *ServerConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.RateLimit == 0 {
		c.RateLimit = 5
	}
	if c.Burst == 0 {
		c.Burst = 10
	}
}

func (c ServerConfig) Validate() error {
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	if c.Burst < 0 {
		return fmt.Errorf("burst must not be negative")
	}
	return nil
}
