package dashboard

import (
	"github.com/vzahanych/weather-dashboard/internal/aggregator"
	"github.com/vzahanych/weather-dashboard/internal/preferences"
	"github.com/vzahanych/weather-dashboard/internal/weather"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is a copy of the controller's session state. Values handed out by
// the controller never alias its internals.
type State struct {
	Status   Status              `json:"status"`
	Weather  *weather.Snapshot   `json:"weather,omitempty"`
	Forecast []aggregator.Day    `json:"forecast,omitempty"`
	Error    string              `json:"error,omitempty"`
	ErrKind  string              `json:"error_kind,omitempty"`
	Units    weather.Units       `json:"units"`
	History  preferences.History `json:"history"`
	// Query is the locator of the search currently shown or in flight.
	Query      *weather.Locator    `json:"query,omitempty"`
	Coordinate *weather.Coordinate `json:"coordinate,omitempty"`
}

func (s State) clone() State {
	out := s
	if s.Weather != nil {
		w := *s.Weather
		out.Weather = &w
	}
	if s.Forecast != nil {
		out.Forecast = append([]aggregator.Day(nil), s.Forecast...)
	}
	out.History = s.History.Clone()
	if s.Query != nil {
		q := *s.Query
		if q.Coordinate != nil {
			c := *q.Coordinate
			q.Coordinate = &c
		}
		out.Query = &q
	}
	if s.Coordinate != nil {
		c := *s.Coordinate
		out.Coordinate = &c
	}
	return out
}
