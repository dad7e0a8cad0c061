// Package aggregator reduces 3-hour forecast samples to one record per
// calendar day.
package aggregator

import (
	"time"

	"github.com/vzahanych/weather-dashboard/internal/weather"
)

// MaxDays caps the forecast set.
const MaxDays = 5

const dateLayout = "2006-01-02"

// Day is the reduction of all samples sharing a calendar date.
type Day struct {
	Date                 time.Time `json:"date"`
	MinTemp              float64   `json:"min_temp"`
	MaxTemp              float64   `json:"max_temp"`
	ConditionCode        string    `json:"condition_code"`
	ConditionDescription string    `json:"condition_description"`
	SampleCount          int       `json:"sample_count"`
}

// Key returns the calendar date as YYYY-MM-DD.
func (d Day) Key() string {
	return d.Date.Format(dateLayout)
}

func (d Day) Weekday() string {
	return d.Date.Format("Mon")
}

// Aggregate groups samples by calendar date in today's location, drops the
// group for today, and returns at most MaxDays days in first-seen order.
//
// Min/max reduce over each sample's temp_min/temp_max (swapped if the
// provider reports them inverted). The condition is the one of the first
// sample in the group.
func Aggregate(samples []weather.Sample, today time.Time) []Day {
	loc := today.Location()
	todayKey := today.Format(dateLayout)

	order := make([]string, 0, MaxDays+1)
	days := make(map[string]*Day)

	for _, s := range samples {
		local := s.Time.In(loc)
		key := local.Format(dateLayout)
		lo, hi := s.TempMin, s.TempMax
		if lo > hi {
			lo, hi = hi, lo
		}

		day, ok := days[key]
		if !ok {
			y, m, d := local.Date()
			days[key] = &Day{
				Date:                 time.Date(y, m, d, 0, 0, 0, 0, loc),
				MinTemp:              lo,
				MaxTemp:              hi,
				ConditionCode:        s.ConditionCode,
				ConditionDescription: s.ConditionDescription,
				SampleCount:          1,
			}
			order = append(order, key)
			continue
		}

		if lo < day.MinTemp {
			day.MinTemp = lo
		}
		if hi > day.MaxTemp {
			day.MaxTemp = hi
		}
		day.SampleCount++
	}

	out := make([]Day, 0, MaxDays)
	for _, key := range order {
		if key == todayKey {
			continue
		}
		out = append(out, *days[key])
		if len(out) == MaxDays {
			break
		}
	}

	return out
}
