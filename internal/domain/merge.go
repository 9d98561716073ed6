package domain

import (
	"slices"
	"time"
)

// JoinedRecord is an observation with its station, if one matched.
type JoinedRecord struct {
	Observation
	Station *Station
}

// MergedRecord is an observation with a resolved time and location. All
// fields are guaranteed present.
type MergedRecord struct {
	Observation
	ObservedAt  time.Time `json:"observed_at"`
	Station     int       `json:"station_id"`
	StationName string    `json:"station_name"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// Join left-joins observations to stations by normalized station id.
// Observations whose id matches nothing keep a nil Station.
func Join(obs []Observation, stations []Station) []JoinedRecord {
	byID := make(map[int]*Station, len(stations))
	for i := range stations {
		if _, dup := byID[stations[i].ID]; !dup {
			byID[stations[i].ID] = &stations[i]
		}
	}

	out := make([]JoinedRecord, len(obs))
	for i, o := range obs {
		out[i].Observation = o
		if id, ok := ParseStationID(o.StationID); ok {
			out[i].Station = byID[id]
		}
	}
	return out
}

// Normalize resolves the observation time, drops rows without a station,
// coordinates, or a valid time, and orders the rest by time. Rows with equal
// times keep their input order.
func Normalize(joined []JoinedRecord) []MergedRecord {
	out := make([]MergedRecord, 0, len(joined))
	for _, j := range joined {
		if j.Station == nil || !j.Station.HasLocation() {
			continue
		}
		t, err := ParseWire(j.Time)
		if err != nil {
			continue
		}
		out = append(out, MergedRecord{
			Observation: j.Observation,
			ObservedAt:  t,
			Station:     j.Station.ID,
			StationName: j.Station.Name,
			Latitude:    *j.Station.Latitude,
			Longitude:   *j.Station.Longitude,
		})
	}
	slices.SortStableFunc(out, func(a, b MergedRecord) int {
		return a.ObservedAt.Compare(b.ObservedAt)
	})
	return out
}

// Merge joins and normalizes in one step.
func Merge(obs []Observation, stations []Station) []MergedRecord {
	return Normalize(Join(obs, stations))
}
