package weather

import "time"

// Snapshot is the current conditions for one location. It is replaced
// wholesale on every successful search.
type Snapshot struct {
	LocationName         string    `json:"location_name"`
	CountryCode          string    `json:"country_code"`
	ObservedAt           time.Time `json:"observed_at"`
	Temperature          float64   `json:"temperature"`
	FeelsLike            float64   `json:"feels_like"`
	MinTemp              float64   `json:"min_temp"`
	MaxTemp              float64   `json:"max_temp"`
	HumidityPercent      int       `json:"humidity_percent"`
	WindSpeed            float64   `json:"wind_speed"`
	WindDegrees          int       `json:"wind_degrees"`
	Pressure             int       `json:"pressure"`
	VisibilityMeters     int       `json:"visibility_meters"`
	ConditionID          int       `json:"condition_id"`
	ConditionCode        string    `json:"condition_code"`
	ConditionDescription string    `json:"condition_description"`
	Sunrise              time.Time `json:"sunrise"`
	Sunset               time.Time `json:"sunset"`
	// TimezoneOffset is the location's UTC offset in seconds.
	TimezoneOffset int        `json:"timezone_offset"`
	Coordinate     Coordinate `json:"coordinate"`
	Units          Units      `json:"units"`
}

// Sample is one raw 3-hour forecast entry.
type Sample struct {
	Time                 time.Time `json:"time"`
	Temp                 float64   `json:"temp"`
	TempMin              float64   `json:"temp_min"`
	TempMax              float64   `json:"temp_max"`
	HumidityPercent      int       `json:"humidity_percent"`
	ConditionCode        string    `json:"condition_code"`
	ConditionDescription string    `json:"condition_description"`
}

// Provider response types.

type condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type currentResponse struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main mainBlock `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility int         `json:"visibility"`
	Weather    []condition `json:"weather"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

type forecastResponse struct {
	List []struct {
		Dt      int64       `json:"dt"`
		Main    mainBlock   `json:"main"`
		Weather []condition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func unixOrZero(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

func (r currentResponse) snapshot(units Units) *Snapshot {
	s := &Snapshot{
		LocationName:     r.Name,
		CountryCode:      r.Sys.Country,
		ObservedAt:       unixOrZero(r.Dt),
		Temperature:      r.Main.Temp,
		FeelsLike:        r.Main.FeelsLike,
		MinTemp:          r.Main.TempMin,
		MaxTemp:          r.Main.TempMax,
		HumidityPercent:  r.Main.Humidity,
		WindSpeed:        r.Wind.Speed,
		WindDegrees:      r.Wind.Deg,
		Pressure:         r.Main.Pressure,
		VisibilityMeters: r.Visibility,
		Sunrise:          unixOrZero(r.Sys.Sunrise),
		Sunset:           unixOrZero(r.Sys.Sunset),
		TimezoneOffset:   r.Timezone,
		Coordinate:       Coordinate{Latitude: r.Coord.Lat, Longitude: r.Coord.Lon},
		Units:            units,
	}
	if len(r.Weather) > 0 {
		s.ConditionID = r.Weather[0].ID
		s.ConditionCode = r.Weather[0].Icon
		s.ConditionDescription = r.Weather[0].Description
	}
	return s
}

func (r forecastResponse) samples() []Sample {
	out := make([]Sample, 0, len(r.List))
	for _, item := range r.List {
		s := Sample{
			Time:            unixOrZero(item.Dt),
			Temp:            item.Main.Temp,
			TempMin:         item.Main.TempMin,
			TempMax:         item.Main.TempMax,
			HumidityPercent: item.Main.Humidity,
		}
		if len(item.Weather) > 0 {
			s.ConditionCode = item.Weather[0].Icon
			s.ConditionDescription = item.Weather[0].Description
		}
		out = append(out, s)
	}
	return out
}
