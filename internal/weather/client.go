package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/observability"
	"github.com/vzahanych/weather-dashboard/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	endpointCurrent  = "current"
	endpointForecast = "forecast"
)

// Client talks to an OpenWeatherMap-compatible provider. It never retries.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
	tele       *telemetry.Telemetry
	metrics    *observability.Metrics
}

func NewClient(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry, metrics *observability.Metrics) *Client {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger.With(zap.String("component", "weather-client")),
		tele:    tele,
		metrics: metrics,
	}
}

// FetchCurrent returns the current conditions for loc in the given units.
func (c *Client) FetchCurrent(ctx context.Context, loc Locator, units Units) (*Snapshot, error) {
	var resp currentResponse
	if err := c.get(ctx, endpointCurrent, "/weather", loc, units, &resp); err != nil {
		return nil, err
	}
	return resp.snapshot(units), nil
}

// FetchForecast returns the raw 3-hour samples for loc, unaggregated.
func (c *Client) FetchForecast(ctx context.Context, loc Locator, units Units) ([]Sample, error) {
	var resp forecastResponse
	if err := c.get(ctx, endpointForecast, "/forecast", loc, units, &resp); err != nil {
		return nil, err
	}
	return resp.samples(), nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, loc Locator, units Units, out interface{}) (err error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather."+endpoint)
	defer span.End()

	span.SetAttributes(
		attribute.String("locator", loc.String()),
		attribute.Bool("by_coordinate", loc.IsCoordinate()),
		attribute.String("units", units.System()),
	)

	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = KindOf(err).String()
			c.tele.RecordError(ctx, err, map[string]interface{}{"endpoint": endpoint})
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		if c.metrics != nil {
			c.metrics.ProviderRequests.WithLabelValues(endpoint, outcome).Inc()
			c.metrics.ProviderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return unavailable(0, fmt.Errorf("rate limit wait canceled: %w", err))
	}

	q := url.Values{}
	loc.apply(q)
	q.Set("appid", c.apiKey)
	q.Set("units", units.System())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return unavailable(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Requesting provider",
		zap.String("endpoint", endpoint),
		zap.String("locator", loc.String()),
		zap.String("units", units.System()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Provider request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return unavailable(0, fmt.Errorf("%s request: %w", endpoint, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		werr := classifyStatus(resp.StatusCode, !loc.IsCoordinate(),
			fmt.Errorf("provider API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
		c.logger.Info("Provider returned error status",
			zap.String("endpoint", endpoint),
			zap.String("locator", loc.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", werr.Kind.String()))
		return werr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Warn("Malformed provider response", zap.String("endpoint", endpoint), zap.Error(err))
		return unavailable(resp.StatusCode, fmt.Errorf("decode %s response: %w", endpoint, err))
	}

	return nil
}
