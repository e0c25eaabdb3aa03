package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/carprice/api/estimates"
	"github.com/kilianp07/carprice/config"
	"github.com/kilianp07/carprice/core/catalog"
	"github.com/kilianp07/carprice/core/events"
	coremetrics "github.com/kilianp07/carprice/core/metrics"
	coremon "github.com/kilianp07/carprice/core/monitoring"
	"github.com/kilianp07/carprice/core/prediction"
	"github.com/kilianp07/carprice/core/pricing"
	"github.com/kilianp07/carprice/core/pricing/history"
	"github.com/kilianp07/carprice/infra/logger"
	"github.com/kilianp07/carprice/infra/metrics"
	"github.com/kilianp07/carprice/infra/monitoring"
	"github.com/kilianp07/carprice/infra/mqtt"
	"github.com/kilianp07/carprice/internal/eventbus"

	// Registers the "forest" ensemble backend.
	_ "github.com/kilianp07/carprice/infra/forest"
)

// Service wires the pricing pipeline to its HTTP, metrics and MQTT outputs.
type Service struct {
	Pricing *pricing.Service

	server    *http.Server
	store     history.Store
	bus       *eventbus.TypedBus[events.Event]
	sink      coremetrics.MetricsSink
	publisher *mqtt.Publisher
	promPort  string
	log       logger.Logger
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.NewZerologLogger("service")

	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		var err error
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}
	reporter, err := monitoring.NewSentryReporter(cfg.Monitoring)
	if err != nil {
		return nil, err
	}
	coremon.SetReporter(reporter)

	ens, err := prediction.LoadEnsemble(cfg.Model.Module())
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := history.Open(cfg.History.Store())
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	bus := eventbus.NewTyped[events.Event](64)
	opts := []pricing.Option{
		pricing.WithPolicy(cfg.Calibration.Policy()),
		pricing.WithWorkers(cfg.Model.Workers),
		pricing.WithMetrics(sink),
		pricing.WithHistory(store),
		pricing.WithEventBus(bus),
		pricing.WithLogger(logg.With("pricing")),
	}
	if cfg.Calibration.ReferenceYear != 0 {
		opts = append(opts, pricing.WithReferenceYear(cfg.Calibration.ReferenceYear))
	}
	ps, err := pricing.New(cat, ens, opts...)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("pricing: %w", err)
	}

	svc := &Service{
		Pricing:  ps,
		store:    store,
		bus:      bus,
		sink:     sink,
		promPort: cfg.Metrics.PrometheusPort,
		log:      logg,
	}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT, logg.With("mqtt"))
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}

	router := estimates.NewRouter(ps, estimates.RouterConfig{
		RateLimit:  cfg.Server.RateLimit,
		Burst:      cfg.Server.Burst,
		CORSOrigin: cfg.Server.CORSOrigin,
	}, logg.With("api"))
	svc.server = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return svc, nil
}

// Handler returns the HTTP API handler.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Run serves the API and the optional outputs until ctx is canceled or one
// of them fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Infof("pricing API listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	})
	if s.promPort != "" {
		g.Go(func() error { return metrics.StartPromServer(ctx, s.promPort) })
	}
	if s.publisher != nil {
		sub := s.bus.Subscribe()
		g.Go(func() error {
			mqtt.Forward(ctx, sub, s.publisher, s.log)
			return nil
		})
	}
	return g.Wait()
}

// Close releases the outputs held by the service and flushes pending error
// reports.
func (s *Service) Close() error {
	s.reportDropped()
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Disconnect()
	}
	if c, ok := s.sink.(coremetrics.Closer); ok {
		c.Close()
	}
	coremon.Flush(2 * time.Second)
	return s.store.Close()
}

// reportDropped logs the events subscribers missed because their buffer was
// full.
func (s *Service) reportDropped() {
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d events", n)
	}
}
