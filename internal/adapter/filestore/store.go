// Package filestore persists the station directory and observation tables as
// flat files. Stations are always CSV. Observations are CSV, or Parquet when
// the path ends in ".parquet".
package filestore

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// utf8BOM prefixes every CSV written so spreadsheet tools detect UTF-8 (the
// station names are Korean).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Store reads and writes tables on the local filesystem.
type Store struct {
	logger *slog.Logger
}

// New creates a Store.
func New(logger *slog.Logger) *Store {
	return &Store{logger: logger}
}

// IsParquet reports whether path selects the columnar format.
func IsParquet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".parquet")
}

// writeAtomic writes through a temp file in the target directory and renames
// it into place, so readers never see a partial table.
func writeAtomic(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// openText opens a CSV file and skips a leading BOM.
func openText(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return readCloser{Reader: br, Closer: f}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// headerIndex maps header names to column positions.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func ioErr(op, path string, err error) error {
	return &domain.IOError{Op: op, Path: path, Err: err}
}
