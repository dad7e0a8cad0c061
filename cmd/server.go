package cmd

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/geolocation"
	"github.com/vzahanych/weather-dashboard/internal/server"
	"go.uber.org/zap"
)

func serverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Start the dashboard HTTP server",
		Long:  `Serve the dashboard session over HTTP with a server-sent event stream of state changes. When geolocation is enabled, ambient weather for the host position is shown until the first manual search.`,
		RunE:  runServer,
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig()

	log.Info("Starting weather dashboard server",
		zap.String("version", Version),
		zap.String("config_path", configPath),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
		zap.Bool("geolocation_enabled", cfg.Geolocation.Enabled),
		zap.Int("server_port", cfg.Server.Port))

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.NewServer(cfg.Server, server.Dependencies{
		Dashboard: a.ctrl,
		Storage:   a.store,
		Metrics:   a.metrics,
		Gatherer:  a.registry,
		Logger:    log,
		Tele:      tele,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	go a.ctrl.UseGeolocation(ctx, geolocation.NewResolverFromConfig(cfg.Geolocation, log))

	select {
	case err := <-errChan:
		log.Error("Server error", zap.Error(err))
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")

		// Ends open event streams so Shutdown does not wait on them.
		a.ctrl.Close()

		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during server shutdown", zap.Error(err))
			return err
		}

		log.Info("Server shutdown complete")
		return nil
	}
}
