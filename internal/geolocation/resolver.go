// Package geolocation resolves the host's current position, best effort.
package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/validation"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap"
)

var (
	ErrDisabled    = errors.New("geolocation disabled")
	ErrUnsupported = errors.New("geolocation provider not supported")
)

// Source is a one-shot "get current position" capability.
type Source interface {
	CurrentPosition(ctx context.Context) (weather.Coordinate, error)
}

// Result is either a resolved coordinate or a denial. Denial is not an
// error: callers simply show no ambient weather.
type Result struct {
	Coordinate weather.Coordinate
	Denied     bool
	Reason     string
}

func Resolved(c weather.Coordinate) Result {
	return Result{Coordinate: c}
}

func Denied(reason string) Result {
	return Result{Denied: true, Reason: reason}
}

type Resolver struct {
	source  Source
	timeout time.Duration
	logger  *zap.Logger
}

func NewResolver(source Source, timeout time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		source:  source,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "geolocation")),
	}
}

// NewResolverFromConfig picks the source named by cfg.Provider. A disabled
// config yields a resolver that always denies.
func NewResolverFromConfig(cfg config.GeolocationConfig, logger *zap.Logger) *Resolver {
	timeout := time.Duration(cfg.Timeout) * time.Second

	var source Source
	switch {
	case !cfg.Enabled:
		source = deniedSource{err: ErrDisabled}
	case cfg.Provider == "static":
		source = StaticSource{Coordinate: weather.Coordinate{Latitude: cfg.Latitude, Longitude: cfg.Longitude}}
	case cfg.Provider == "ip":
		source = NewIPSource(cfg.LookupURL, timeout)
	default:
		source = deniedSource{err: fmt.Errorf("%w: %q", ErrUnsupported, cfg.Provider)}
	}

	return NewResolver(source, timeout, logger)
}

// Resolve makes a single attempt. Failures, timeouts and out-of-range
// coordinates are all absorbed into a Denied result.
func (r *Resolver) Resolve(ctx context.Context) Result {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	coord, err := r.source.CurrentPosition(ctx)
	if err != nil {
		r.logger.Info("Geolocation denied", zap.Error(err))
		return Denied(err.Error())
	}

	if errs := validation.ValidateStruct(coord); len(errs) > 0 {
		reason := validation.Summarize(errs)
		r.logger.Info("Geolocation returned invalid coordinate", zap.String("reason", reason))
		return Denied(reason)
	}

	r.logger.Info("Geolocation resolved",
		zap.Float64("lat", coord.Latitude),
		zap.Float64("lon", coord.Longitude))
	return Resolved(coord)
}

type StaticSource struct {
	Coordinate weather.Coordinate
}

func (s StaticSource) CurrentPosition(context.Context) (weather.Coordinate, error) {
	return s.Coordinate, nil
}

type deniedSource struct {
	err error
}

func (d deniedSource) CurrentPosition(context.Context) (weather.Coordinate, error) {
	return weather.Coordinate{}, d.err
}
