package domain

import (
	"math"
	"strconv"
	"strings"
)

// Station is a KMA observing site. Latitude and Longitude are nil when unknown.
type Station struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// HasLocation reports whether both coordinates are known.
func (s Station) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// ParseStationID normalizes a station id token. KMA writes integers, but
// files that went through a spreadsheet may carry "90.0".
func ParseStationID(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(raw); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// ParseCoordinate parses a latitude or longitude. Blank or invalid is nil.
func ParseCoordinate(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
