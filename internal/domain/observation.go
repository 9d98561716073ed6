package domain

import (
	"math"
	"strconv"
	"strings"
)

// Observation is one hourly reading from one station. Field order and the
// json/parquet names follow the kma_sfctm3 column order. Numeric fields are
// nil when the reading is missing.
type Observation struct {
	Time      string `json:"TM" parquet:"TM"`   // YYYYMMDDHHmm, KST
	StationID string `json:"STN" parquet:"STN"` // raw station id token

	WindDir          *float64 `json:"WD" parquet:"WD"`
	WindSpeed        *float64 `json:"WS" parquet:"WS"`
	GustDir          *float64 `json:"GST_WD" parquet:"GST_WD"`
	GustSpeed        *float64 `json:"GST_WS" parquet:"GST_WS"`
	GustTime         *float64 `json:"GST_TM" parquet:"GST_TM"`
	StationPressure  *float64 `json:"PA" parquet:"PA"`
	SeaLevelPressure *float64 `json:"PS" parquet:"PS"`
	PressureTrend    *float64 `json:"PT" parquet:"PT"`
	PressureChange   *float64 `json:"PR" parquet:"PR"`
	AirTemp          *float64 `json:"TA" parquet:"TA"`
	DewPoint         *float64 `json:"TD" parquet:"TD"`
	Humidity         *float64 `json:"HM" parquet:"HM"`
	VaporPressure    *float64 `json:"PV" parquet:"PV"`
	Rain             *float64 `json:"RN" parquet:"RN"`
	RainDay          *float64 `json:"RN_DAY" parquet:"RN_DAY"`
	RainIntensity    *float64 `json:"RN_INT" parquet:"RN_INT"`
	Snow3h           *float64 `json:"SD_HR3" parquet:"SD_HR3"`
	SnowDay          *float64 `json:"SD_DAY" parquet:"SD_DAY"`
	SnowDepth        *float64 `json:"SD_TOT" parquet:"SD_TOT"`
	WeatherGTS       *float64 `json:"WC" parquet:"WC"`
	PastWeather      *float64 `json:"WP" parquet:"WP"`
	Weather          string   `json:"WW" parquet:"WW,optional"` // present weather code, categorical
	CloudTotal       *float64 `json:"CA_TOT" parquet:"CA_TOT"`
	CloudMidLow      *float64 `json:"CA_MID" parquet:"CA_MID"`
	CloudBaseMin     *float64 `json:"CH_MIN" parquet:"CH_MIN"`
	CloudType        string   `json:"CT" parquet:"CT,optional"` // categorical
	CloudTypeTop     *float64 `json:"CT_TOP" parquet:"CT_TOP"`
	CloudTypeMid     *float64 `json:"CT_MID" parquet:"CT_MID"`
	CloudTypeLow     *float64 `json:"CT_LOW" parquet:"CT_LOW"`
	Visibility       *float64 `json:"VS" parquet:"VS"`
	Sunshine         *float64 `json:"SS" parquet:"SS"`
	Radiation        *float64 `json:"SI" parquet:"SI"`
	GroundTemp       *float64 `json:"TS" parquet:"TS"`
	SoilTemp5        *float64 `json:"TE_005" parquet:"TE_005"`
	SoilTemp10       *float64 `json:"TE_01" parquet:"TE_01"`
	SoilTemp20       *float64 `json:"TE_02" parquet:"TE_02"`
	SoilTemp30       *float64 `json:"TE_03" parquet:"TE_03"`
	SeaState         *float64 `json:"ST_SEA" parquet:"ST_SEA"`
	WaveHeight       *float64 `json:"WH" parquet:"WH"`
	Beaufort         *float64 `json:"BF" parquet:"BF"`
	RainIndicator    *float64 `json:"IR" parquet:"IR"`
	WeatherIndicator *float64 `json:"IX" parquet:"IX"`
	RainJun          *float64 `json:"RN_JUN" parquet:"RN_JUN"`
}

// ColumnKind classifies how a column is coerced.
type ColumnKind int

const (
	KindTime ColumnKind = iota
	KindStation
	KindCategory
	KindNumeric
)

// Identity reports whether the column is part of the (station, time) identity.
func (k ColumnKind) Identity() bool {
	return k == KindTime || k == KindStation
}

// Column describes one wire column and how to read and write it on an Observation.
type Column struct {
	Name string
	Kind ColumnKind

	text func(o *Observation) *string
	num  func(o *Observation) **float64
}

// Format renders the cell as it is written to a flat file. Null is "".
func (c Column) Format(o *Observation) string {
	if c.num != nil {
		p := *c.num(o)
		if p == nil {
			return ""
		}
		return strconv.FormatFloat(*p, 'f', -1, 64)
	}
	return *c.text(o)
}

// Set stores a raw token into the cell. Numeric tokens that do not parse are
// stored as null and reported as a *ParseError; the observation stays usable.
func (c Column) Set(o *Observation, raw string) error {
	raw = strings.TrimSpace(raw)
	if c.num == nil {
		*c.text(o) = raw
		return nil
	}
	if raw == "" {
		*c.num(o) = nil
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*c.num(o) = nil
		return &ParseError{Column: c.Name, Token: raw}
	}
	*c.num(o) = &v
	return nil
}

// Float returns the numeric value of the cell and whether it is non-null.
func (c Column) Float(o *Observation) (float64, bool) {
	if c.num == nil {
		return 0, false
	}
	p := *c.num(o)
	if p == nil {
		return 0, false
	}
	return *p, true
}

// clear nulls the cell.
func (c Column) clear(o *Observation) {
	if c.num != nil {
		*c.num(o) = nil
		return
	}
	*c.text(o) = ""
}

func textCol(name string, kind ColumnKind, f func(o *Observation) *string) Column {
	return Column{Name: name, Kind: kind, text: f}
}

func numCol(name string, f func(o *Observation) **float64) Column {
	return Column{Name: name, Kind: KindNumeric, num: f}
}

// Columns is the kma_sfctm3 schema in wire order.
var Columns = []Column{
	textCol("TM", KindTime, func(o *Observation) *string { return &o.Time }),
	textCol("STN", KindStation, func(o *Observation) *string { return &o.StationID }),
	numCol("WD", func(o *Observation) **float64 { return &o.WindDir }),
	numCol("WS", func(o *Observation) **float64 { return &o.WindSpeed }),
	numCol("GST_WD", func(o *Observation) **float64 { return &o.GustDir }),
	numCol("GST_WS", func(o *Observation) **float64 { return &o.GustSpeed }),
	numCol("GST_TM", func(o *Observation) **float64 { return &o.GustTime }),
	numCol("PA", func(o *Observation) **float64 { return &o.StationPressure }),
	numCol("PS", func(o *Observation) **float64 { return &o.SeaLevelPressure }),
	numCol("PT", func(o *Observation) **float64 { return &o.PressureTrend }),
	numCol("PR", func(o *Observation) **float64 { return &o.PressureChange }),
	numCol("TA", func(o *Observation) **float64 { return &o.AirTemp }),
	numCol("TD", func(o *Observation) **float64 { return &o.DewPoint }),
	numCol("HM", func(o *Observation) **float64 { return &o.Humidity }),
	numCol("PV", func(o *Observation) **float64 { return &o.VaporPressure }),
	numCol("RN", func(o *Observation) **float64 { return &o.Rain }),
	numCol("RN_DAY", func(o *Observation) **float64 { return &o.RainDay }),
	numCol("RN_INT", func(o *Observation) **float64 { return &o.RainIntensity }),
	numCol("SD_HR3", func(o *Observation) **float64 { return &o.Snow3h }),
	numCol("SD_DAY", func(o *Observation) **float64 { return &o.SnowDay }),
	numCol("SD_TOT", func(o *Observation) **float64 { return &o.SnowDepth }),
	numCol("WC", func(o *Observation) **float64 { return &o.WeatherGTS }),
	numCol("WP", func(o *Observation) **float64 { return &o.PastWeather }),
	textCol("WW", KindCategory, func(o *Observation) *string { return &o.Weather }),
	numCol("CA_TOT", func(o *Observation) **float64 { return &o.CloudTotal }),
	numCol("CA_MID", func(o *Observation) **float64 { return &o.CloudMidLow }),
	numCol("CH_MIN", func(o *Observation) **float64 { return &o.CloudBaseMin }),
	textCol("CT", KindCategory, func(o *Observation) *string { return &o.CloudType }),
	numCol("CT_TOP", func(o *Observation) **float64 { return &o.CloudTypeTop }),
	numCol("CT_MID", func(o *Observation) **float64 { return &o.CloudTypeMid }),
	numCol("CT_LOW", func(o *Observation) **float64 { return &o.CloudTypeLow }),
	numCol("VS", func(o *Observation) **float64 { return &o.Visibility }),
	numCol("SS", func(o *Observation) **float64 { return &o.Sunshine }),
	numCol("SI", func(o *Observation) **float64 { return &o.Radiation }),
	numCol("TS", func(o *Observation) **float64 { return &o.GroundTemp }),
	numCol("TE_005", func(o *Observation) **float64 { return &o.SoilTemp5 }),
	numCol("TE_01", func(o *Observation) **float64 { return &o.SoilTemp10 }),
	numCol("TE_02", func(o *Observation) **float64 { return &o.SoilTemp20 }),
	numCol("TE_03", func(o *Observation) **float64 { return &o.SoilTemp30 }),
	numCol("ST_SEA", func(o *Observation) **float64 { return &o.SeaState }),
	numCol("WH", func(o *Observation) **float64 { return &o.WaveHeight }),
	numCol("BF", func(o *Observation) **float64 { return &o.Beaufort }),
	numCol("IR", func(o *Observation) **float64 { return &o.RainIndicator }),
	numCol("IX", func(o *Observation) **float64 { return &o.WeatherIndicator }),
	numCol("RN_JUN", func(o *Observation) **float64 { return &o.RainJun }),
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(Columns))
	for i, c := range Columns {
		idx[c.Name] = i
	}
	return idx
}()

// ColumnByName looks up a schema column by its wire name.
func ColumnByName(name string) (Column, bool) {
	i, ok := columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return Columns[i], true
}

// ColumnNames returns the schema header in wire order.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}
