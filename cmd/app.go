package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/dashboard"
	"github.com/vzahanych/weather-dashboard/internal/observability"
	"github.com/vzahanych/weather-dashboard/internal/preferences"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap"
)

// app bundles the components shared by every command.
type app struct {
	store    *preferences.Store
	registry *prometheus.Registry
	metrics  *observability.Metrics
	ctrl     *dashboard.Controller
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	location, err := dashboardLocation(cfg.Dashboard.Timezone)
	if err != nil {
		return nil, err
	}

	kv, err := preferences.NewKV(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open preference storage: %w", err)
	}
	store := preferences.NewStore(kv, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	client := weather.NewClient(cfg.Weather, log, tele, metrics)

	ctrl := dashboard.New(ctx, client, store, dashboard.Options{
		Clock:    clockwork.NewRealClock(),
		Location: location,
		Logger:   log,
		Tele:     tele,
		Metrics:  metrics,
	})

	log.Debug("Dashboard initialized",
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("timezone", location.String()))

	return &app{
		store:    store,
		registry: registry,
		metrics:  metrics,
		ctrl:     ctrl,
	}, nil
}

func (a *app) Close() {
	a.ctrl.Close()
	if err := a.store.Close(); err != nil {
		log.Warn("Failed to close preference storage", zap.Error(err))
	}
}

// dashboardLocation resolves the zone used for forecast calendar dates.
func dashboardLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid dashboard timezone %q: %w", name, err)
	}
	return loc, nil
}
