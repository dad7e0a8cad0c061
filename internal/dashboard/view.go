package dashboard

import (
	"fmt"
	"time"

	"github.com/vzahanych/weather-dashboard/internal/weather"
)

const iconURLFormat = "https://openweathermap.org/img/wn/%s@2x.png"

// View is the display form of a State: rounded temperatures with unit
// symbols and client-side converted wind/visibility labels.
type View struct {
	Status   Status         `json:"status"`
	Loading  bool           `json:"loading"`
	Error    string         `json:"error,omitempty"`
	Units    weather.Units  `json:"units"`
	History  []string       `json:"history"`
	Current  *CurrentView   `json:"current,omitempty"`
	Forecast []ForecastView `json:"forecast,omitempty"`
}

type CurrentView struct {
	Location    string `json:"location"`
	ObservedAt  string `json:"observed_at"`
	Temperature string `json:"temperature"`
	FeelsLike   string `json:"feels_like"`
	MinMax      string `json:"min_max"`
	Humidity    string `json:"humidity"`
	WindSpeed   string `json:"wind_speed"`
	Pressure    string `json:"pressure"`
	Visibility  string `json:"visibility"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
}

type ForecastView struct {
	Date        string `json:"date"`
	Weekday     string `json:"weekday"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Description string `json:"description"`
	IconURL     string `json:"icon_url,omitempty"`
}

// Render builds the display view. Labels follow the units the data was
// fetched in, which may briefly differ from the preference during a toggle.
func Render(s State) View {
	v := View{
		Status:  s.Status,
		Loading: s.Status == StatusLoading,
		Error:   s.Error,
		Units:   s.Units,
		History: []string(s.History.Clone()),
	}

	if s.Weather == nil {
		return v
	}

	units := s.Weather.Units
	if !units.Valid() {
		units = s.Units
	}

	w := s.Weather
	location := w.LocationName
	if w.CountryCode != "" {
		location = fmt.Sprintf("%s, %s", w.LocationName, w.CountryCode)
	}

	observed := ""
	if !w.ObservedAt.IsZero() {
		observed = w.ObservedAt.In(time.FixedZone("", w.TimezoneOffset)).Format("2006-01-02 15:04")
	}

	v.Current = &CurrentView{
		Location:    location,
		ObservedAt:  observed,
		Temperature: units.FormatTemperature(w.Temperature),
		FeelsLike:   units.FormatTemperature(w.FeelsLike),
		MinMax:      fmt.Sprintf("%s / %s", units.FormatTemperature(w.MinTemp), units.FormatTemperature(w.MaxTemp)),
		Humidity:    fmt.Sprintf("%d%%", w.HumidityPercent),
		WindSpeed:   fmt.Sprintf("%.1f %s", w.WindSpeed, units.WindSpeedLabel()),
		Pressure:    fmt.Sprintf("%d hPa", w.Pressure),
		Visibility:  fmt.Sprintf("%.1f %s", units.Visibility(w.VisibilityMeters), units.VisibilityLabel()),
		Description: w.ConditionDescription,
		IconURL:     iconURL(w.ConditionCode),
	}

	for _, day := range s.Forecast {
		v.Forecast = append(v.Forecast, ForecastView{
			Date:        day.Key(),
			Weekday:     day.Weekday(),
			High:        units.FormatTemperature(day.MaxTemp),
			Low:         units.FormatTemperature(day.MinTemp),
			Description: day.ConditionDescription,
			IconURL:     iconURL(day.ConditionCode),
		})
	}

	return v
}

func iconURL(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf(iconURLFormat, code)
}
