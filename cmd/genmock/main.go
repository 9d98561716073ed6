// Command genmock generates deterministic sample data in the KMA hourly text
// format and runs it through the same parse and missing-value normalization
// the collector uses, then writes the station and observation tables. The
// output lets the dashboard run without an API key.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -from 2024-01 -to 2024-03 \
//	  -weather-out data/mock/kma_weather_202401-202403.csv \
//	  -station-out data/mock/station_info.csv \
//	  -raw-dir data/mock/raw
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

const seed = 20240101

// station coordinates from the KMA directory.
var stations = []domain.Station{
	{ID: 108, Name: "서울", Latitude: ptr(37.5714), Longitude: ptr(126.9658)},
	{ID: 112, Name: "인천", Latitude: ptr(37.4777), Longitude: ptr(126.6249)},
	{ID: 133, Name: "대전", Latitude: ptr(36.3720), Longitude: ptr(127.3721)},
	{ID: 143, Name: "대구", Latitude: ptr(35.8780), Longitude: ptr(128.6530)},
	{ID: 156, Name: "광주", Latitude: ptr(35.1729), Longitude: ptr(126.8916)},
	{ID: 159, Name: "부산", Latitude: ptr(35.1047), Longitude: ptr(129.0320)},
	{ID: 184, Name: "제주", Latitude: ptr(33.5141), Longitude: ptr(126.5297)},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	fromFlag := flag.String("from", "2024-01", "first month, YYYY-MM")
	toFlag := flag.String("to", "2024-03", "last month, YYYY-MM")
	weatherOut := flag.String("weather-out", "", "observation table path (.csv or .parquet)")
	stationOut := flag.String("station-out", "", "station table path")
	rawDir := flag.String("raw-dir", "", "optional directory for the generated raw monthly bodies")
	flag.Parse()

	if *weatherOut == "" || *stationOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -weather-out, -station-out")
	}
	from, err := domain.ParseYearMonth(*fromFlag)
	if err != nil {
		return err
	}
	to, err := domain.ParseYearMonth(*toFlag)
	if err != nil {
		return err
	}
	months := domain.MonthsBetween(from, to)
	if len(months) == 0 {
		return fmt.Errorf("range %s..%s is empty", from, to)
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	var all []domain.Observation
	var sentinels int
	for _, ym := range months {
		var body bytes.Buffer
		writeMonth(&body, ym, rng)

		if *rawDir != "" {
			if err := os.MkdirAll(*rawDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(*rawDir, "kma_sfctm3_"+ym.Compact()+".txt")
			if err := os.WriteFile(path, body.Bytes(), 0o600); err != nil {
				return err
			}
		}

		obs, stats, err := domain.ParseObservations(&body)
		if err != nil {
			return fmt.Errorf("parse %s: %w", ym, err)
		}
		for i := range obs {
			sentinels += domain.NormalizeMissing(&obs[i])
		}
		all = append(all, obs...)
		log.Printf("%s: %d rows (%d comment lines)", ym, len(obs), stats.Comments)
	}

	store := filestore.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := store.SaveStations(*stationOut, stations); err != nil {
		return fmt.Errorf("writing station table: %w", err)
	}
	log.Printf("wrote station table: %s (%d stations)", *stationOut, len(stations))

	if err := store.SaveObservations(*weatherOut, all); err != nil {
		return fmt.Errorf("writing observation table: %w", err)
	}
	log.Printf("wrote observation table: %s (%d rows, %d sentinel cells cleared)", *weatherOut, len(all), sentinels)

	merged := domain.Merge(all, stations)
	log.Printf("merge check: %d of %d rows survive", len(merged), len(all))
	return nil
}

// writeMonth renders one month as the kma_sfctm3 endpoint would.
func writeMonth(w io.Writer, ym domain.YearMonth, rng *rand.Rand) {
	win := domain.MonthWindow(ym)
	fmt.Fprintf(w, "#START7777\n# %s\n", strings.Join(domain.ColumnNames(), " "))
	for t := win.Start; !t.After(win.End); t = t.Add(time.Hour) {
		for _, st := range stations {
			fmt.Fprintln(w, strings.Join(row(t, st, rng), " "))
		}
	}
	fmt.Fprintln(w, "#7777END")
}

func row(t time.Time, st domain.Station, rng *rand.Rand) []string {
	lat := *st.Latitude
	day := float64(t.YearDay())
	hour := float64(t.Hour())

	// Coldest mid-January, warmest mid-afternoon, cooler further north.
	ta := 13 - 14*math.Cos(2*math.Pi*(day-15)/365) + 4*math.Sin(2*math.Pi*(hour-9)/24) - (lat-35)*1.5 + rng.NormFloat64()
	hm := clamp(65+15*math.Cos(2*math.Pi*(hour-3)/24)+rng.NormFloat64()*8, 10, 100)
	ws := math.Abs(2.5 + rng.NormFloat64()*1.5)
	rn := 0.0
	if rng.Float64() < 0.08 {
		rn = rng.ExpFloat64() * 2
	}

	tokens := make([]string, 0, len(domain.Columns))
	for _, col := range domain.Columns {
		var tok string
		switch col.Name {
		case "TM":
			tok = domain.FormatWire(t)
		case "STN":
			tok = strconv.Itoa(st.ID)
		case "TA":
			tok = num(ta)
		case "TD":
			tok = num(ta - (100-hm)/5)
		case "HM":
			tok = num(hm)
		case "WS":
			tok = num(ws)
		case "WD":
			tok = strconv.Itoa(rng.IntN(36) * 10)
		case "PA":
			tok = num(1005 + rng.NormFloat64()*4)
		case "PS":
			tok = num(1015 + rng.NormFloat64()*4)
		case "RN":
			tok = num(rn)
		case "WW", "CT":
			tok = "-"
		default:
			tok = "-9"
		}
		tokens = append(tokens, tok)
	}

	// Sensor dropouts.
	if rng.Float64() < 0.02 {
		tokens[columnIndex("TA")] = "-99.0"
	}
	if rng.Float64() < 0.02 {
		tokens[columnIndex("HM")] = "-9.0"
	}
	return tokens
}

func columnIndex(name string) int {
	for i, c := range domain.Columns {
		if c.Name == name {
			return i
		}
	}
	panic("unknown column " + name)
}

func num(v float64) string { return strconv.FormatFloat(math.Round(v*10)/10, 'f', 1, 64) }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }

func ptr(v float64) *float64 { return &v }
