package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/weather"
)

// IPSource estimates the host position from its public IP using an
// ip-api.com compatible endpoint.
type IPSource struct {
	url        string
	httpClient *http.Client
}

func NewIPSource(url string, timeout time.Duration) *IPSource {
	return &IPSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city"`
}

func (s *IPSource) CurrentPosition(ctx context.Context) (weather.Coordinate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return weather.Coordinate{}, fmt.Errorf("ip lookup: status %d", resp.StatusCode)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return weather.Coordinate{}, fmt.Errorf("decode ip lookup: %w", err)
	}

	if body.Status != "" && body.Status != "success" {
		return weather.Coordinate{}, fmt.Errorf("ip lookup failed: %s", body.Message)
	}

	return weather.Coordinate{Latitude: body.Lat, Longitude: body.Lon}, nil
}
