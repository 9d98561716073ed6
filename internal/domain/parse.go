package domain

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// CommentPrefix marks metadata lines in kma_sfctm3 responses.
const CommentPrefix = "#"

// ParseObservationLine parses one data line. Lines with fewer than two tokens
// are not readings. Tokens past the schema width are ignored and missing
// trailing tokens are null. Coercion failures are returned alongside the
// observation, which is still usable.
func ParseObservationLine(line string) (Observation, []error, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Observation{}, nil, false
	}
	if len(fields) > len(Columns) {
		fields = fields[:len(Columns)]
	}

	var (
		o    Observation
		errs []error
	)
	for i, tok := range fields {
		if err := Columns[i].Set(&o, tok); err != nil {
			errs = append(errs, err)
		}
	}
	return o, errs, true
}

// ParseStats summarizes a parse pass.
type ParseStats struct {
	Lines    int // data lines considered
	Skipped  int // data lines that were not readings
	Coerced  int // cells nulled because they did not parse
	Comments int
}

// ParseObservations reads a kma_sfctm3 body. Comment and blank lines are
// dropped. Sentinels are not normalized here; see [NormalizeMissing].
func ParseObservations(r io.Reader) ([]Observation, ParseStats, error) {
	var (
		out   []Observation
		stats ParseStats
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, CommentPrefix) {
			stats.Comments++
			continue
		}
		stats.Lines++
		o, errs, ok := ParseObservationLine(line)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Coerced += len(errs)
		out = append(out, o)
	}
	if err := sc.Err(); err != nil {
		return out, stats, fmt.Errorf("scan observations: %w", err)
	}
	return out, stats, nil
}
