package filestore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// Station table header, as the operator-facing file has always been written.
var stationHeader = []string{"STN", "지점명", "위도", "경도"}

// SaveStations writes the station directory as CSV.
func (s *Store) SaveStations(path string, stations []domain.Station) error {
	err := writeAtomic(path, func(w io.Writer) error {
		if _, err := w.Write(utf8BOM); err != nil {
			return err
		}
		cw := csv.NewWriter(w)
		if err := cw.Write(stationHeader); err != nil {
			return err
		}
		for _, st := range stations {
			rec := []string{strconv.Itoa(st.ID), st.Name, formatCoord(st.Latitude), formatCoord(st.Longitude)}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return ioErr("save stations", path, err)
	}
	s.logger.Info("station file written", "path", path, "stations", len(stations))
	return nil
}

// LoadStations reads a station CSV written by SaveStations. Rows with a bad
// station id fail the load; bad coordinates load as unknown.
func (s *Store) LoadStations(path string) ([]domain.Station, error) {
	f, err := openText(path)
	if err != nil {
		return nil, ioErr("load stations", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, ioErr("load stations", path, fmt.Errorf("read header: %w", err))
	}
	idx := headerIndex(header)
	pos := make([]int, len(stationHeader))
	for i, name := range stationHeader {
		p, ok := idx[name]
		if !ok {
			return nil, ioErr("load stations", path, fmt.Errorf("missing column %q", name))
		}
		pos[i] = p
	}

	var stations []domain.Station
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ioErr("load stations", path, err)
		}
		id, ok := domain.ParseStationID(cell(rec, pos[0]))
		if !ok {
			return nil, ioErr("load stations", path, fmt.Errorf("line %d: invalid station id %q", line, cell(rec, pos[0])))
		}
		stations = append(stations, domain.Station{
			ID:        id,
			Name:      cell(rec, pos[1]),
			Latitude:  domain.ParseCoordinate(cell(rec, pos[2])),
			Longitude: domain.ParseCoordinate(cell(rec, pos[3])),
		})
	}
	return stations, nil
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
