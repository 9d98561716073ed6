package dashboard

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// Variable is a quantity the map can be colored by.
type Variable struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Unit  string `json:"unit"`
}

// Variables lists the map variables in display order.
var Variables = []Variable{
	{Code: "TA", Label: "기온", Unit: "°C"},
	{Code: "HM", Label: "상대습도", Unit: "%"},
	{Code: "WS", Label: "풍속", Unit: "m/s"},
	{Code: "RN", Label: "강수량", Unit: "mm"},
}

// LookupVariable finds a map variable by code.
func LookupVariable(code string) (Variable, bool) {
	for _, v := range Variables {
		if v.Code == code {
			return v, true
		}
	}
	return Variable{}, false
}

// LegendEntry is one color band.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend returns the color bands for a variable.
func Legend(code string) []LegendEntry {
	switch code {
	case "TA":
		return []LegendEntry{{"blue", "<= 0°C"}, {"green", "0-15°C"}, {"orange", "15-25°C"}, {"red", "> 25°C"}}
	case "HM":
		return []LegendEntry{{"orange", "<= 40%"}, {"green", "40-70%"}, {"blue", "> 70%"}}
	case "WS":
		return []LegendEntry{{"green", "<= 2m/s"}, {"orange", "2-5m/s"}, {"red", "> 5m/s"}}
	case "RN":
		return []LegendEntry{{"purple", "> 0mm"}, {"gray", "0mm"}}
	default:
		return nil
	}
}

// ColorFor classifies a value into its band. Missing values are gray.
func ColorFor(code string, v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "gray"
	}
	x := *v
	switch code {
	case "TA":
		switch {
		case x <= 0:
			return "blue"
		case x <= 15:
			return "green"
		case x <= 25:
			return "orange"
		default:
			return "red"
		}
	case "HM":
		switch {
		case x <= 40:
			return "orange"
		case x <= 70:
			return "green"
		default:
			return "blue"
		}
	case "WS":
		switch {
		case x <= 2:
			return "green"
		case x <= 5:
			return "orange"
		default:
			return "red"
		}
	default:
		if x > 0 {
			return "purple"
		}
		return "gray"
	}
}

// value reads a numeric column off a record.
func value(r *domain.MergedRecord, code string) *float64 {
	c, ok := domain.ColumnByName(code)
	if !ok {
		return nil
	}
	v, ok := c.Float(&r.Observation)
	if !ok {
		return nil
	}
	return &v
}

// sameDay compares calendar days in KST.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(domain.KST).Date()
	by, bm, bd := b.In(domain.KST).Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.In(domain.KST).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, domain.KST)
}

// ParseDate parses a YYYY-MM-DD date as a KST day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, domain.KST)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// StationNames returns the distinct station names, sorted.
func StationNames(records []domain.MergedRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	for i := range records {
		n := records[i].StationName
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// DateRange returns the first and last observation day. ok is false for an
// empty dataset.
func DateRange(records []domain.MergedRecord) (first, last time.Time, ok bool) {
	if len(records) == 0 {
		return time.Time{}, time.Time{}, false
	}
	// records are ordered by time
	return startOfDay(records[0].ObservedAt), startOfDay(records[len(records)-1].ObservedAt), true
}

// SnapshotPoint is one station at one hour.
type SnapshotPoint struct {
	StationID   int       `json:"station_id"`
	StationName string    `json:"station_name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	ObservedAt  time.Time `json:"observed_at"`
	Value       *float64  `json:"value"`
	Color       string    `json:"color"`
	AirTemp     *float64  `json:"TA"`
	Humidity    *float64  `json:"HM"`
	WindSpeed   *float64  `json:"WS"`
	Rain        *float64  `json:"RN"`
}

// HourlySnapshot returns every station reading at date+hour, colored by variable.
func HourlySnapshot(records []domain.MergedRecord, date time.Time, hour int, code string) []SnapshotPoint {
	at := startOfDay(date).Add(time.Duration(hour) * time.Hour)
	var out []SnapshotPoint
	for i := range records {
		r := &records[i]
		if !r.ObservedAt.Equal(at) {
			continue
		}
		v := value(r, code)
		out = append(out, SnapshotPoint{
			StationID:   r.Station,
			StationName: r.StationName,
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			ObservedAt:  r.ObservedAt,
			Value:       v,
			Color:       ColorFor(code, v),
			AirTemp:     r.AirTemp,
			Humidity:    r.Humidity,
			WindSpeed:   r.WindSpeed,
			Rain:        r.Rain,
		})
	}
	return out
}

// StationDay is one station's daily aggregate.
type StationDay struct {
	StationName string   `json:"station_name"`
	MaxTemp     *float64 `json:"max_temp"`
	MinTemp     *float64 `json:"min_temp"`
	TotalRain   float64  `json:"total_rain"`
}

// Summary is the national daily overview.
type Summary struct {
	Date        string       `json:"date"`
	Stations    []StationDay `json:"stations"`
	MeanMaxTemp *float64     `json:"mean_max_temp"`
	MeanMinTemp *float64     `json:"mean_min_temp"`
	MeanRain    *float64     `json:"mean_rain"`
}

// DailySummary aggregates one day per station (max/min TA, total RN) and
// averages those across stations. Missing readings are skipped; a station
// with no rain readings totals 0.
func DailySummary(records []domain.MergedRecord, date time.Time) Summary {
	byName := make(map[string]*StationDay)
	var order []string
	for i := range records {
		r := &records[i]
		if !sameDay(r.ObservedAt, date) {
			continue
		}
		sd, ok := byName[r.StationName]
		if !ok {
			sd = &StationDay{StationName: r.StationName}
			byName[r.StationName] = sd
			order = append(order, r.StationName)
		}
		if r.AirTemp != nil {
			t := *r.AirTemp
			if sd.MaxTemp == nil || t > *sd.MaxTemp {
				sd.MaxTemp = &t
			}
			if sd.MinTemp == nil || t < *sd.MinTemp {
				sd.MinTemp = &t
			}
		}
		if r.Rain != nil {
			sd.TotalRain += *r.Rain
		}
	}

	slices.Sort(order)
	s := Summary{Date: startOfDay(date).Format(time.DateOnly), Stations: make([]StationDay, 0, len(order))}
	var maxes, mins, rains []float64
	for _, name := range order {
		sd := byName[name]
		s.Stations = append(s.Stations, *sd)
		if sd.MaxTemp != nil {
			maxes = append(maxes, *sd.MaxTemp)
		}
		if sd.MinTemp != nil {
			mins = append(mins, *sd.MinTemp)
		}
		rains = append(rains, sd.TotalRain)
	}
	s.MeanMaxTemp = mean(maxes)
	s.MeanMinTemp = mean(mins)
	s.MeanRain = mean(rains)
	return s
}

func mean(xs []float64) *float64 {
	if len(xs) == 0 {
		return nil
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	return &m
}

// SeriesPoint is one reading in a station time series.
type SeriesPoint struct {
	ObservedAt  time.Time `json:"observed_at"`
	StationName string    `json:"station_name"`
	Value       *float64  `json:"value"`
}

// DefaultSeriesDays is the comparison window length.
const DefaultSeriesDays = 30

// Series returns readings of code for the named stations from days before end
// through end (whole KST days), in time order.
func Series(records []domain.MergedRecord, stations []string, end time.Time, days int, code string) []SeriesPoint {
	if len(stations) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(stations))
	for _, s := range stations {
		want[s] = struct{}{}
	}
	from := startOfDay(end).AddDate(0, 0, -days)
	until := startOfDay(end).AddDate(0, 0, 1)

	var out []SeriesPoint
	for i := range records {
		r := &records[i]
		if _, ok := want[r.StationName]; !ok {
			continue
		}
		if r.ObservedAt.Before(from) || !r.ObservedAt.Before(until) {
			continue
		}
		out = append(out, SeriesPoint{ObservedAt: r.ObservedAt, StationName: r.StationName, Value: value(r, code)})
	}
	return out
}
