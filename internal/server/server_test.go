package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/dashboard"
	"github.com/vzahanych/weather-dashboard/internal/observability"
	"github.com/vzahanych/weather-dashboard/internal/preferences"
	"github.com/vzahanych/weather-dashboard/internal/server/handlers"
	"github.com/vzahanych/weather-dashboard/internal/server/middlewares"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap/zaptest"
)

const currentLondon = `{
	"name": "London",
	"dt": 1792324800,
	"coord": {"lat": 51.51, "lon": -0.13},
	"main": {"temp": 15.0, "feels_like": 14.2, "temp_min": 12.0, "temp_max": 18.0, "pressure": 1013, "humidity": 70},
	"wind": {"speed": 4.1, "deg": 240},
	"visibility": 10000,
	"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
	"sys": {"country": "GB", "sunrise": 1792305000, "sunset": 1792343000},
	"timezone": 3600
}`

// Samples for 2026-10-19 and 2026-10-20 UTC.
const forecastLondon = `{
	"list": [
		{"dt": 1792382400, "main": {"temp": 10, "temp_min": 9, "temp_max": 11, "humidity": 80}, "weather": [{"id": 500, "description": "light rain", "icon": "10n"}]},
		{"dt": 1792404000, "main": {"temp": 13, "temp_min": 12, "temp_max": 14, "humidity": 75}, "weather": [{"id": 800, "description": "clear sky", "icon": "01d"}]},
		{"dt": 1792468800, "main": {"temp": 8, "temp_min": 7, "temp_max": 9, "humidity": 85}, "weather": [{"id": 804, "description": "overcast clouds", "icon": "04n"}]}
	],
	"city": {"name": "London", "country": "GB", "timezone": 3600}
}`

type provider struct {
	mu    sync.Mutex
	units []string
}

func (p *provider) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.units = append(p.units, r.URL.Query().Get("units"))
		p.mu.Unlock()

		if !strings.EqualFold(r.URL.Query().Get("q"), "london") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
			return
		}
		_, _ = w.Write([]byte(currentLondon))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.URL.Query().Get("q"), "london") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(forecastLondon))
	})
	return mux
}

func (p *provider) lastUnits() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.units) == 0 {
		return ""
	}
	return p.units[len(p.units)-1]
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type fixture struct {
	server   *Server
	ctrl     *dashboard.Controller
	provider *provider
}

func newFixture(t *testing.T, storage handlers.Pinger) *fixture {
	t.Helper()
	log := zaptest.NewLogger(t)

	p := &provider{}
	upstream := httptest.NewServer(p.handler())
	t.Cleanup(upstream.Close)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	client := weather.NewClient(config.WeatherConfig{
		BaseURL:   upstream.URL,
		APIKey:    "test-key",
		Timeout:   5,
		RateBurst: 1,
	}, log, nil, metrics)

	store := preferences.NewStore(preferences.NewMemoryKV(), log)
	ctrl := dashboard.New(context.Background(), client, store, dashboard.Options{
		Clock:    clockwork.NewFakeClockAt(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)),
		Location: time.UTC,
		Logger:   log,
		Metrics:  metrics,
	})
	t.Cleanup(ctrl.Close)

	if storage == nil {
		storage = store
	}

	srv := NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, Dependencies{
		Dashboard: ctrl,
		Storage:   storage,
		Metrics:   metrics,
		Gatherer:  reg,
		Logger:    log,
	})

	return &fixture{server: srv, ctrl: ctrl, provider: p}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestDashboard_InitialStateIsIdle(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.DashboardResponse](t, rec)
	assert.Equal(t, dashboard.StatusIdle, resp.State.Status)
	assert.Equal(t, weather.Celsius, resp.View.Units)
	assert.Nil(t, resp.View.Current)
}

func TestSearch_Success(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/search", `{"city":"London"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[handlers.DashboardResponse](t, rec)
	assert.Equal(t, dashboard.StatusReady, resp.State.Status)
	require.NotNil(t, resp.View.Current)
	assert.Equal(t, "London, GB", resp.View.Current.Location)
	assert.Equal(t, "15°C", resp.View.Current.Temperature)
	assert.Equal(t, "12°C / 18°C", resp.View.Current.MinMax)
	assert.Equal(t, []string{"London"}, resp.View.History)

	require.Len(t, resp.View.Forecast, 2)
	assert.Equal(t, "2026-10-19", resp.View.Forecast[0].Date)
	assert.Equal(t, "14°C", resp.View.Forecast[0].High)
	assert.Equal(t, "9°C", resp.View.Forecast[0].Low)
	assert.Equal(t, "light rain", resp.View.Forecast[0].Description)

	assert.Equal(t, "metric", f.provider.lastUnits())
}

func TestSearch_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/search", `{"city":"Springfield"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := decode[handlers.ErrorResponse](t, rec)
	assert.Equal(t, "City not found. Please check the spelling and try again.", resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Code)

	st := f.ctrl.State()
	assert.Equal(t, dashboard.StatusFailed, st.Status)
	assert.Empty(t, st.History)
}

func TestSearch_RejectsInvalidInput(t *testing.T) {
	f := newFixture(t, nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"city":`},
		{"missing city", `{}`},
		{"blank city", `{"city":"   "}`},
		{"too long", fmt.Sprintf(`{"city":%q}`, strings.Repeat("a", 101))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/search", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_PARAMS", decode[handlers.ErrorResponse](t, rec).Code)
		})
	}

	assert.Equal(t, dashboard.StatusIdle, f.ctrl.State().Status)
}

func TestRefresh_ConflictWhenNothingShown(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NOT_READY", decode[handlers.ErrorResponse](t, rec).Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/search", `{"city":"London"}`).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/refresh", "").Code)
}

func TestToggleUnits_RefetchesInImperial(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/search", `{"city":"London"}`).Code)

	rec := f.do(t, http.MethodPost, "/api/units/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[handlers.UnitsResponse](t, rec)
	assert.Equal(t, "fahrenheit", resp.Units)
	assert.Equal(t, "imperial", f.provider.lastUnits())
	assert.Equal(t, "15°F", resp.View.Current.Temperature)
	assert.Equal(t, "4.1 mph", resp.View.Current.WindSpeed)
}

func TestHistory(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/search", `{"city":"london"}`).Code)

	rec := f.do(t, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"london"}, decode[handlers.HistoryResponse](t, rec).History)
}

func TestReadiness(t *testing.T) {
	t.Run("storage reachable", func(t *testing.T) {
		f := newFixture(t, nil)
		rec := f.do(t, http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ready", decode[handlers.HealthResponse](t, rec).Status)
	})

	t.Run("storage down", func(t *testing.T) {
		f := newFixture(t, stubPinger{err: errors.New("database is locked")})
		rec := f.do(t, http.MethodGet, "/health/ready", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unavailable", decode[handlers.HealthResponse](t, rec).Status)
	})

	t.Run("liveness ignores storage", func(t *testing.T) {
		f := newFixture(t, stubPinger{err: errors.New("down")})
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", "").Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code)
	})
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middlewares.RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(middlewares.RequestIDHeader))

	rec = f.do(t, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(middlewares.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/search", `{"city":"London"}`).Code)

	rec := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `weather_dashboard_http_requests_total{method="POST",route="/api/search",status="200"} 1`)
	assert.Contains(t, body, `weather_dashboard_provider_requests_total{endpoint="current",outcome="success"} 1`)
	assert.Contains(t, body, `weather_dashboard_state_transitions_total{status="ready"} 1`)
}

func TestEvents_StreamsState(t *testing.T) {
	f := newFixture(t, nil)

	ts := httptest.NewServer(f.server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := make(chan handlers.DashboardResponse, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			var ev handlers.DashboardResponse
			if json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev) == nil {
				events <- ev
			}
		}
	}()

	first := <-events
	assert.Equal(t, dashboard.StatusIdle, first.State.Status)

	go func() { _ = f.ctrl.Submit(context.Background(), "London") }()

	var statuses []dashboard.Status
	for ev := range events {
		statuses = append(statuses, ev.State.Status)
		if ev.State.Status == dashboard.StatusReady {
			break
		}
	}
	assert.Equal(t, []dashboard.Status{dashboard.StatusLoading, dashboard.StatusReady}, statuses)
}
