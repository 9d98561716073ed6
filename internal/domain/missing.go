package domain

import (
	"strconv"
	"strings"
)

// MissingValues are the sentinels KMA writes in place of a reading.
var MissingValues = []float64{-9, -99}

// IsMissing reports whether v is a missing-data sentinel.
func IsMissing(v float64) bool {
	for _, m := range MissingValues {
		if v == m {
			return true
		}
	}
	return false
}

// NormalizeMissing replaces sentinels with null across every non-identity
// column. Categorical tokens whose numeric value is a sentinel are cleared too.
// It returns the number of cells cleared.
func NormalizeMissing(o *Observation) int {
	n := 0
	for _, c := range Columns {
		switch c.Kind {
		case KindNumeric:
			if v, ok := c.Float(o); ok && IsMissing(v) {
				c.clear(o)
				n++
			}
		case KindCategory:
			if IsMissingToken(c.Format(o)) {
				c.clear(o)
				n++
			}
		}
	}
	return n
}

// IsMissingToken reports whether a raw categorical token reads as a sentinel.
func IsMissingToken(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	v, err := strconv.ParseFloat(raw, 64)
	return err == nil && IsMissing(v)
}

// HasMissing reports whether any sentinel survived in o. Used by integrity checks.
func HasMissing(o *Observation) bool {
	for _, c := range Columns {
		switch c.Kind {
		case KindNumeric:
			if v, ok := c.Float(o); ok && IsMissing(v) {
				return true
			}
		case KindCategory:
			if IsMissingToken(c.Format(o)) {
				return true
			}
		}
	}
	return false
}
