// Package monitoring adapts Sentry to the core error reporter.
package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	coremon "github.com/kilianp07/carprice/core/monitoring"
)

// Config defines the Sentry client settings. An empty DSN disables reporting.
type Config struct {
	DSN         string  `json:"dsn"`
	Environment string  `json:"environment"`
	Release     string  `json:"release"`
	SampleRate  float64 `json:"sample_rate"`
}

// Validate checks the sample rate bounds.
func (c Config) Validate() error {
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0,1]")
	}
	return nil
}

// beforeSend is overridden in tests to observe events without a network.
var beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event

// NewSentryReporter initializes the Sentry client. Without a DSN it returns a
// NopReporter.
func NewSentryReporter(cfg Config) (coremon.Reporter, error) {
	if cfg.DSN == "" {
		return coremon.NopReporter{}, nil
	}
	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1
	}
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		SampleRate:  rate,
		BeforeSend:  beforeSend,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	return &sentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

type sentryReporter struct {
	hub *sentry.Hub
}

func (s *sentryReporter) withTags(tags map[string]string, f func(*sentry.Hub)) {
	hub := s.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
	})
	f(hub)
}

func (s *sentryReporter) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	s.withTags(tags, func(h *sentry.Hub) { h.CaptureException(err) })
}

func (s *sentryReporter) CapturePanic(v any, tags map[string]string) {
	s.withTags(tags, func(h *sentry.Hub) { h.Recover(v) })
}

func (s *sentryReporter) Flush(timeout time.Duration) bool { return s.hub.Flush(timeout) }
