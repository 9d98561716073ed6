// Command validate performs integrity checks on the persisted tables: the
// observation table schema, surviving missing-value sentinels, timestamp and
// station id parsing, station directory coverage, and the merge invariants.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -weather kma_weather_202401-202510.csv \
//	  -stations station_info.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// maxErrorsPerPhase caps the detail printed for a phase.
const maxErrorsPerPhase = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	errors  []string
	dropped int
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) >= maxErrorsPerPhase {
		p.dropped++
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) count() int { return len(p.errors) + p.dropped }

func (p *phase) passed() bool { return p.count() == 0 }

func main() {
	weather := flag.String("weather", "", "observation table (.csv or .parquet)")
	stationFile := flag.String("stations", "", "station table")
	flag.Parse()

	if *weather == "" || *stationFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*weather, *stationFile); code != 0 {
		os.Exit(code)
	}
}

func run(weatherPath, stationPath string) int {
	fmt.Println("=== KMA Table Integrity Validation ===")
	fmt.Println()

	store := filestore.New(slog.New(slog.NewTextHandler(io.Discard, nil)))

	header, err := readHeader(weatherPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read observation schema: %v\n", err)
		return 1
	}
	obs, err := store.LoadObservations(weatherPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load observations: %v\n", err)
		return 1
	}
	stations, err := store.LoadStations(stationPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load stations: %v\n", err)
		return 1
	}

	merged := domain.Merge(obs, stations)

	phases := []*phase{
		validateSchema(header),
		validateMissing(obs),
		validateIdentity(obs),
		validateStations(obs, stations),
		validateMerge(merged),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", p.count())
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d observations, %d stations, %d merged\n", len(obs), len(stations), len(merged))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
		if p.dropped > 0 {
			fmt.Printf("  ... and %d more\n", p.dropped)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// readHeader returns the column names of an observation table in file order.
func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filestore.IsParquet(path) {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		pf, err := parquet.OpenFile(f, info.Size())
		if err != nil {
			return nil, err
		}
		var names []string
		for _, field := range pf.Schema().Fields() {
			names = append(names, field.Name())
		}
		return names, nil
	}

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	return header, nil
}

// ── Phase 1: Schema ──

func validateSchema(header []string) *phase {
	p := &phase{name: "Phase 1: Schema (45 KMA columns)"}

	want := domain.ColumnNames()
	if len(header) != len(want) {
		p.errorf("column count: expected %d, got %d", len(want), len(header))
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			p.errorf("duplicate column %q", h)
		}
		seen[h] = true
		if _, ok := domain.ColumnByName(h); !ok {
			p.errorf("unexpected column %q", h)
		}
	}
	for _, name := range want {
		if !seen[name] {
			p.errorf("missing column %q", name)
		}
	}
	if p.passed() && !slices.Equal(header, want) {
		p.errorf("columns are not in wire order")
	}
	return p
}

// ── Phase 2: Missing values ──

func validateMissing(obs []domain.Observation) *phase {
	p := &phase{name: "Phase 2: Missing Values (no -9/-99)"}
	for i := range obs {
		if !domain.HasMissing(&obs[i]) {
			continue
		}
		for _, col := range domain.Columns {
			if col.Kind.Identity() {
				continue
			}
			if col.Kind == domain.KindCategory {
				if tok := col.Format(&obs[i]); domain.IsMissingToken(tok) {
					p.errorf("row %d (TM %s STN %s): %s holds sentinel %q", i+1, obs[i].Time, obs[i].StationID, col.Name, tok)
				}
				continue
			}
			if v, ok := col.Float(&obs[i]); ok && domain.IsMissing(v) {
				p.errorf("row %d (TM %s STN %s): %s holds sentinel %g", i+1, obs[i].Time, obs[i].StationID, col.Name, v)
			}
		}
	}
	return p
}

// ── Phase 3: Identity columns ──

func validateIdentity(obs []domain.Observation) *phase {
	p := &phase{name: "Phase 3: Identity (TM, STN parse)"}
	for i := range obs {
		if _, err := domain.ParseWire(obs[i].Time); err != nil {
			p.errorf("row %d: TM %q: %v", i+1, obs[i].Time, err)
		}
		if _, ok := domain.ParseStationID(obs[i].StationID); !ok {
			p.errorf("row %d: STN %q is not a station id", i+1, obs[i].StationID)
		}
	}
	return p
}

// ── Phase 4: Station coverage ──

func validateStations(obs []domain.Observation, stations []domain.Station) *phase {
	p := &phase{name: "Phase 4: Station Coverage (directory)"}

	directory := make(map[int]domain.Station, len(stations))
	for _, st := range stations {
		if _, dup := directory[st.ID]; dup {
			p.errorf("station %d listed more than once", st.ID)
			continue
		}
		directory[st.ID] = st
	}

	rows := map[int]int{}
	for i := range obs {
		if id, ok := domain.ParseStationID(obs[i].StationID); ok {
			rows[id]++
		}
	}

	ids := make([]int, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		st, ok := directory[id]
		switch {
		case !ok:
			p.errorf("station %d (%d rows) not in directory", id, rows[id])
		case !st.HasLocation():
			p.errorf("station %d %s (%d rows) has no coordinates", id, st.Name, rows[id])
		}
	}
	return p
}

// ── Phase 5: Merge invariants ──

func validateMerge(merged []domain.MergedRecord) *phase {
	p := &phase{name: "Phase 5: Merge (ordering, completeness)"}
	for i := range merged {
		r := &merged[i]
		if r.ObservedAt.IsZero() {
			p.errorf("merged %d: zero time", i)
		}
		if r.StationName == "" {
			p.errorf("merged %d: station %d has no name", i, r.Station)
		}
		if i > 0 && r.ObservedAt.Before(merged[i-1].ObservedAt) {
			p.errorf("merged %d: %s is before %s", i, r.ObservedAt, merged[i-1].ObservedAt)
		}
	}
	return p
}
