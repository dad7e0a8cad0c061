package geolocation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/weather"
	"go.uber.org/zap/zaptest"
)

type blockingSource struct{}

func (blockingSource) CurrentPosition(ctx context.Context) (weather.Coordinate, error) {
	<-ctx.Done()
	return weather.Coordinate{}, ctx.Err()
}

func TestResolver_Static(t *testing.T) {
	r := NewResolverFromConfig(config.GeolocationConfig{
		Enabled:   true,
		Provider:  "static",
		Latitude:  50.45,
		Longitude: 30.52,
		Timeout:   1,
	}, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.False(t, res.Denied)
	assert.Equal(t, weather.Coordinate{Latitude: 50.45, Longitude: 30.52}, res.Coordinate)
}

func TestResolver_DisabledIsDenied(t *testing.T) {
	r := NewResolverFromConfig(config.GeolocationConfig{Enabled: false, Provider: "static", Timeout: 1}, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.True(t, res.Denied)
	assert.Contains(t, res.Reason, "disabled")
}

func TestResolver_UnknownProviderIsDenied(t *testing.T) {
	r := NewResolverFromConfig(config.GeolocationConfig{Enabled: true, Provider: "gps", Timeout: 1}, zaptest.NewLogger(t))
	assert.True(t, r.Resolve(context.Background()).Denied)
}

func TestResolver_TimeoutIsDenied(t *testing.T) {
	r := NewResolver(blockingSource{}, 20*time.Millisecond, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.True(t, res.Denied)
	assert.Contains(t, res.Reason, "deadline")
}

func TestResolver_OutOfRangeIsDenied(t *testing.T) {
	r := NewResolver(StaticSource{Coordinate: weather.Coordinate{Latitude: 120, Longitude: 0}}, time.Second, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.True(t, res.Denied)
	assert.Contains(t, res.Reason, "latitude")
}

func TestIPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","lat":49.84,"lon":24.03,"city":"Lviv"}`))
	}))
	defer srv.Close()

	r := NewResolverFromConfig(config.GeolocationConfig{
		Enabled:   true,
		Provider:  "ip",
		LookupURL: srv.URL,
		Timeout:   2,
	}, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.False(t, res.Denied)
	assert.Equal(t, weather.Coordinate{Latitude: 49.84, Longitude: 24.03}, res.Coordinate)
}

func TestIPSource_FailureStatusIsDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range"}`))
	}))
	defer srv.Close()

	r := NewResolver(NewIPSource(srv.URL, time.Second), time.Second, zaptest.NewLogger(t))

	res := r.Resolve(context.Background())
	assert.True(t, res.Denied)
	assert.Contains(t, res.Reason, "private range")
}

func TestIPSource_HTTPErrorIsDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewResolver(NewIPSource(srv.URL, time.Second), time.Second, zaptest.NewLogger(t))
	assert.True(t, r.Resolve(context.Background()).Denied)
}
