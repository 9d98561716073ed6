package filestore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// SaveObservations writes the observation table. Null cells are empty in CSV
// and null in Parquet.
func (s *Store) SaveObservations(path string, obs []domain.Observation) error {
	write := writeObservationsCSV
	if IsParquet(path) {
		write = writeObservationsParquet
	}
	if err := writeAtomic(path, func(w io.Writer) error { return write(w, obs) }); err != nil {
		return ioErr("save observations", path, err)
	}
	s.logger.Info("observation file written", "path", path, "rows", len(obs))
	return nil
}

// LoadObservations reads an observation table written by SaveObservations.
// CSV columns are matched by header name; absent columns load as null.
func (s *Store) LoadObservations(path string) ([]domain.Observation, error) {
	if IsParquet(path) {
		obs, err := parquet.ReadFile[domain.Observation](path)
		if err != nil {
			return nil, ioErr("load observations", path, err)
		}
		return obs, nil
	}

	f, err := openText(path)
	if err != nil {
		return nil, ioErr("load observations", path, err)
	}
	defer f.Close()

	obs, coerced, err := readObservationsCSV(f)
	if err != nil {
		return nil, ioErr("load observations", path, err)
	}
	if coerced > 0 {
		s.logger.Warn("observation cells coerced to null", "path", path, "cells", coerced)
	}
	return obs, nil
}

func writeObservationsCSV(w io.Writer, obs []domain.Observation) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ColumnNames()); err != nil {
		return err
	}
	rec := make([]string, len(domain.Columns))
	for i := range obs {
		for j, c := range domain.Columns {
			rec[j] = c.Format(&obs[i])
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeObservationsParquet(w io.Writer, obs []domain.Observation) error {
	pw := parquet.NewGenericWriter[domain.Observation](w)
	if _, err := pw.Write(obs); err != nil {
		return err
	}
	return pw.Close()
}

func readObservationsCSV(r io.Reader) ([]domain.Observation, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx := headerIndex(header)
	if _, ok := idx["TM"]; !ok {
		return nil, 0, errors.New(`missing column "TM"`)
	}
	if _, ok := idx["STN"]; !ok {
		return nil, 0, errors.New(`missing column "STN"`)
	}

	pos := make([]int, len(domain.Columns))
	for i, c := range domain.Columns {
		p, ok := idx[c.Name]
		if !ok {
			p = -1
		}
		pos[i] = p
	}

	var (
		obs     []domain.Observation
		coerced int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		var o domain.Observation
		for i, c := range domain.Columns {
			if err := c.Set(&o, cell(rec, pos[i])); err != nil {
				coerced++
			}
		}
		obs = append(obs, o)
	}
	return obs, coerced, nil
}
