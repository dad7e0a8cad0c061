// Package dashboard owns one session's UI state: the current snapshot and
// forecast, the recent-search list and the unit preference.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/vzahanych/weather-dashboard/internal/aggregator"
	"github.com/vzahanych/weather-dashboard/internal/geolocation"
	"github.com/vzahanych/weather-dashboard/internal/observability"
	"github.com/vzahanych/weather-dashboard/internal/preferences"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"github.com/vzahanych/weather-dashboard/pkg/logger"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Guard outcomes. None of them changes state.
var (
	ErrEmptyQuery         = errors.New("search query is empty")
	ErrSearchInFlight     = errors.New("a search is already in progress")
	ErrNotReady           = errors.New("no weather is displayed to refresh")
	ErrGeolocationIgnored = errors.New("geolocation result ignored")
)

const subscriberBuffer = 16

type WeatherClient interface {
	FetchCurrent(ctx context.Context, loc weather.Locator, units weather.Units) (*weather.Snapshot, error)
	FetchForecast(ctx context.Context, loc weather.Locator, units weather.Units) ([]weather.Sample, error)
}

type PreferenceStore interface {
	Load(ctx context.Context) preferences.Preferences
	SaveHistory(ctx context.Context, h preferences.History) error
	SaveUnits(ctx context.Context, u weather.Units) error
}

type PositionResolver interface {
	Resolve(ctx context.Context) geolocation.Result
}

type Options struct {
	Clock    clockwork.Clock
	Location *time.Location
	Logger   *zap.Logger
	Tele     *telemetry.Telemetry
	Metrics  *observability.Metrics
}

// Controller serializes all state changes behind one mutex. At most one
// search is in flight; overlapping intents are dropped, not queued.
type Controller struct {
	client   WeatherClient
	store    PreferenceStore
	clock    clockwork.Clock
	location *time.Location
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  *observability.Metrics

	mu              sync.Mutex
	state           State
	loading         bool
	manualSucceeded bool
	geoSeen         bool
	last            *weather.Locator
	subscribers     map[string]chan State
}

// New reads the persisted preferences once and starts Idle.
func New(ctx context.Context, client WeatherClient, store PreferenceStore, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	prefs := store.Load(ctx)

	return &Controller{
		client:   client,
		store:    store,
		clock:    opts.Clock,
		location: opts.Location,
		logger:   opts.Logger.With(zap.String("component", "dashboard")),
		tele:     opts.Tele,
		metrics:  opts.Metrics,
		state: State{
			Status:  StatusIdle,
			Units:   prefs.Units,
			History: prefs.History.Clone(),
		},
		subscribers: make(map[string]chan State),
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Submit searches for a typed city name. Blank input and submissions while
// another search is loading are ignored with ErrEmptyQuery/ErrSearchInFlight.
// A provider failure is returned and also recorded as the Failed state.
func (c *Controller) Submit(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		c.ignored(ctx, "empty_query")
		return ErrEmptyQuery
	}
	return c.search(ctx, weather.CityLocator(city), false)
}

// ToggleUnits flips and persists the unit preference, then re-fetches the
// last successful search in the new unit system.
func (c *Controller) ToggleUnits(ctx context.Context) (weather.Units, error) {
	c.mu.Lock()
	units := c.state.Units.Toggle()
	c.state.Units = units
	var last *weather.Locator
	if c.last != nil {
		l := *c.last
		last = &l
	}
	c.publishLocked()
	c.mu.Unlock()

	log := logger.FromContext(ctx, c.logger)
	log.Info("Unit preference toggled", zap.String("units", string(units)))

	if err := c.store.SaveUnits(context.WithoutCancel(ctx), units); err != nil {
		log.Warn("Failed to persist unit preference", zap.Error(err))
	}

	if last == nil {
		return units, nil
	}
	return units, c.search(ctx, *last, false)
}

// Refresh re-runs the search that produced the displayed weather.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Status != StatusReady || c.last == nil {
		c.mu.Unlock()
		c.ignored(ctx, "not_ready")
		return ErrNotReady
	}
	last := *c.last
	c.mu.Unlock()

	return c.search(ctx, last, false)
}

// OnGeolocation handles the resolver's coordinate. Only the first one per
// session is accepted, and it only triggers a search while no manual
// search has succeeded and nothing is loading.
func (c *Controller) OnGeolocation(ctx context.Context, coord weather.Coordinate) error {
	c.mu.Lock()
	if c.geoSeen {
		c.mu.Unlock()
		c.ignored(ctx, "geolocation_repeat")
		return ErrGeolocationIgnored
	}
	c.geoSeen = true
	cc := coord
	c.state.Coordinate = &cc
	if c.manualSucceeded || c.loading {
		c.mu.Unlock()
		c.ignored(ctx, "geolocation_late")
		return ErrGeolocationIgnored
	}
	c.mu.Unlock()

	return c.search(ctx, weather.CoordinateLocator(coord), true)
}

// UseGeolocation resolves the host position once and feeds it to
// OnGeolocation. A denial is absorbed.
func (c *Controller) UseGeolocation(ctx context.Context, r PositionResolver) {
	res := r.Resolve(ctx)
	if res.Denied {
		logger.FromContext(ctx, c.logger).Info("No ambient weather, geolocation denied", zap.String("reason", res.Reason))
		return
	}

	if err := c.OnGeolocation(ctx, res.Coordinate); err != nil && !errors.Is(err, ErrGeolocationIgnored) {
		logger.FromContext(ctx, c.logger).Warn("Geolocation search failed", zap.Error(err))
	}
}

// search outlives the caller's context: a disconnected client does not
// abort the shared session's fetch. Work is bounded by the client timeout.
func (c *Controller) search(ctx context.Context, loc weather.Locator, fromGeolocation bool) error {
	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, c.logger).With(zap.String("locator", loc.String()))

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		c.ignored(ctx, "in_flight")
		return ErrSearchInFlight
	}
	if fromGeolocation && c.manualSucceeded {
		c.mu.Unlock()
		c.ignored(ctx, "geolocation_late")
		return ErrGeolocationIgnored
	}
	c.loading = true
	units := c.state.Units
	query := loc
	c.state.Status = StatusLoading
	c.state.Error = ""
	c.state.ErrKind = ""
	c.state.Query = &query
	c.transitionLocked(StatusLoading)
	c.mu.Unlock()

	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "dashboard.search")
	defer span.End()
	span.SetAttributes(
		attribute.String("locator", loc.String()),
		attribute.String("units", string(units)),
		attribute.Bool("geolocation", fromGeolocation),
	)

	log.Info("Search started", zap.String("units", string(units)))

	var (
		snap    *weather.Snapshot
		samples []weather.Sample
		err     error
	)
	if loc.IsCoordinate() {
		snap, samples, err = c.fetchByCoordinate(ctx, loc, units)
	} else {
		snap, samples, err = c.fetchByCity(ctx, loc, units)
	}

	today := c.clock.Now().In(c.location)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading = false

	if err != nil {
		kind := weather.KindOf(err)
		c.state.Status = StatusFailed
		c.state.Weather = nil
		c.state.Forecast = nil
		c.state.Error = kind.Message()
		c.state.ErrKind = kind.String()
		c.transitionLocked(StatusFailed)

		span.SetAttributes(attribute.String("outcome", kind.String()))
		c.tele.RecordError(ctx, err, map[string]interface{}{"locator": loc.String()})
		log.Warn("Search failed", zap.String("kind", kind.String()), zap.Error(err))
		return err
	}

	c.state.Status = StatusReady
	c.state.Weather = snap
	c.state.Forecast = aggregator.Aggregate(samples, today)

	if !loc.IsCoordinate() {
		c.manualSucceeded = true
		c.state.History = c.state.History.Push(loc.City)
		if err := c.store.SaveHistory(ctx, c.state.History); err != nil {
			log.Warn("Failed to persist search history", zap.Error(err))
		}
	}
	c.last = &query
	c.transitionLocked(StatusReady)

	span.SetAttributes(
		attribute.String("outcome", "success"),
		attribute.Int("forecast_days", len(c.state.Forecast)),
	)
	log.Info("Search completed",
		zap.String("location", snap.LocationName),
		zap.Int("forecast_days", len(c.state.Forecast)))

	return nil
}

// fetchByCity runs both requests concurrently and waits for both. Either
// failure fails the search; the current-conditions error wins a tie.
func (c *Controller) fetchByCity(ctx context.Context, loc weather.Locator, units weather.Units) (*weather.Snapshot, []weather.Sample, error) {
	var (
		wg          sync.WaitGroup
		snap        *weather.Snapshot
		samples     []weather.Sample
		currentErr  error
		forecastErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		snap, currentErr = c.client.FetchCurrent(ctx, loc, units)
	}()
	go func() {
		defer wg.Done()
		samples, forecastErr = c.client.FetchForecast(ctx, loc, units)
	}()
	wg.Wait()

	if currentErr != nil {
		return nil, nil, currentErr
	}
	if forecastErr != nil {
		return nil, nil, forecastErr
	}
	return snap, samples, nil
}

// fetchByCoordinate reverse-resolves the coordinate through the current
// conditions response, then fetches the forecast by that city name.
func (c *Controller) fetchByCoordinate(ctx context.Context, loc weather.Locator, units weather.Units) (*weather.Snapshot, []weather.Sample, error) {
	snap, err := c.client.FetchCurrent(ctx, loc, units)
	if err != nil {
		return nil, nil, err
	}
	if snap.LocationName == "" {
		return nil, nil, &weather.Error{
			Kind: weather.KindUnavailable,
			Err:  errors.New("provider returned no location name for coordinate"),
		}
	}

	samples, err := c.client.FetchForecast(ctx, weather.CityLocator(snap.LocationName), units)
	if err != nil {
		return nil, nil, err
	}
	return snap, samples, nil
}

// Subscribe registers a listener. The channel receives the current state
// immediately and a copy after every change; a slow listener misses
// updates instead of blocking the controller. Call cancel to unsubscribe.
func (c *Controller) Subscribe() (<-chan State, func()) {
	id := uuid.New().String()
	ch := make(chan State, subscriberBuffer)

	c.mu.Lock()
	c.subscribers[id] = ch
	ch <- c.state.clone()
	c.updateSubscribersGaugeLocked()
	c.mu.Unlock()

	c.logger.Debug("Subscriber added", zap.String("subscriber_id", id))

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if existing, ok := c.subscribers[id]; ok {
				close(existing)
				delete(c.subscribers, id)
				c.updateSubscribersGaugeLocked()
			}
		})
	}
}

// Close disconnects all subscribers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.subscribers {
		close(ch)
		delete(c.subscribers, id)
	}
	c.updateSubscribersGaugeLocked()
}

func (c *Controller) transitionLocked(status Status) {
	if c.metrics != nil {
		c.metrics.Transitions.WithLabelValues(string(status)).Inc()
	}
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	for id, ch := range c.subscribers {
		select {
		case ch <- c.state.clone():
		default:
			c.logger.Debug("Subscriber buffer full, dropping update", zap.String("subscriber_id", id))
		}
	}
}

func (c *Controller) updateSubscribersGaugeLocked() {
	if c.metrics != nil {
		c.metrics.Subscribers.Set(float64(len(c.subscribers)))
	}
}

func (c *Controller) ignored(ctx context.Context, reason string) {
	if c.metrics != nil {
		c.metrics.IgnoredIntents.WithLabelValues(reason).Inc()
	}
	logger.FromContext(ctx, c.logger).Debug("Intent ignored", zap.String("reason", reason))
}
