package weather

import (
	"fmt"
	"net/url"
	"strconv"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Latitude, c.Longitude)
}

// Locator is either a free-text city name or a coordinate pair.
type Locator struct {
	City       string      `json:"city,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
}

func CityLocator(city string) Locator {
	return Locator{City: city}
}

func CoordinateLocator(c Coordinate) Locator {
	return Locator{Coordinate: &c}
}

func (l Locator) IsCoordinate() bool {
	return l.Coordinate != nil
}

func (l Locator) String() string {
	if l.Coordinate != nil {
		return l.Coordinate.String()
	}
	return l.City
}

func (l Locator) apply(q url.Values) {
	if l.Coordinate != nil {
		q.Set("lat", strconv.FormatFloat(l.Coordinate.Latitude, 'f', 6, 64))
		q.Set("lon", strconv.FormatFloat(l.Coordinate.Longitude, 'f', 6, 64))
		return
	}
	q.Set("q", l.City)
}
