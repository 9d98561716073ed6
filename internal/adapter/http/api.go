package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/kma-weather-etl/internal/dashboard"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

const (
	defaultHour     = 9
	defaultVariable = "TA"
)

// defaultSeriesStations are compared when the request names none.
var defaultSeriesStations = []string{"서울", "부산"}

type errorResponse struct {
	Error string `json:"error"`
}

type rangeResponse struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

type variableResponse struct {
	dashboard.Variable
	Legend []dashboard.LegendEntry `json:"legend"`
}

type snapshotResponse struct {
	Date     string                    `json:"date"`
	Hour     int                       `json:"hour"`
	Variable variableResponse          `json:"variable"`
	Points   []dashboard.SnapshotPoint `json:"points"`
}

type seriesResponse struct {
	Stations []string                `json:"stations"`
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Variable variableResponse        `json:"variable"`
	Points   []dashboard.SeriesPoint `json:"points"`
}

// badRequest marks a client parameter error.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*dashboard.Dataset, bool) {
	ds, err := s.data.Dataset(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return ds, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var br badRequest
	switch {
	case errors.As(err, &br):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{Error: br.msg})
	case errors.Is(err, domain.ErrUnavailable):
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("api request failed", "path", r.URL.Path, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load dataset"})
	}
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"stations": ds.Stations})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	first, last, ok := dashboard.DateRange(ds.Records)
	if !ok {
		s.writeError(w, r, fmt.Errorf("%w: dataset is empty", domain.ErrUnavailable))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, rangeResponse{First: first.Format(time.DateOnly), Last: last.Format(time.DateOnly)})
}

func (s *Server) handleVariables(w http.ResponseWriter, _ *http.Request) {
	out := make([]variableResponse, 0, len(dashboard.Variables))
	for _, v := range dashboard.Variables {
		out = append(out, variableResponse{Variable: v, Legend: dashboard.Legend(v.Code)})
	}
	sharedobs.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	date, err := dateParam(q.Get("date"), ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hour, err := intParam(q.Get("hour"), "hour", defaultHour, 0, 23)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := variableParam(q.Get("variable"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	points := dashboard.HourlySnapshot(ds.Records, date, hour, v.Code)
	if points == nil {
		points = []dashboard.SnapshotPoint{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, snapshotResponse{
		Date:     date.Format(time.DateOnly),
		Hour:     hour,
		Variable: variableResponse{Variable: v, Legend: dashboard.Legend(v.Code)},
		Points:   points,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	date, err := dateParam(r.URL.Query().Get("date"), ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, dashboard.DailySummary(ds.Records, date))
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	end, err := dateParam(q.Get("date"), ds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	days, err := intParam(q.Get("days"), "days", dashboard.DefaultSeriesDays, 0, 366)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := variableParam(q.Get("variable"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stations := splitList(q.Get("stations"))
	if len(stations) == 0 {
		stations = defaultSeriesStations
	}

	points := dashboard.Series(ds.Records, stations, end, days, v.Code)
	if points == nil {
		points = []dashboard.SeriesPoint{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, seriesResponse{
		Stations: stations,
		From:     end.AddDate(0, 0, -days).Format(time.DateOnly),
		To:       end.Format(time.DateOnly),
		Variable: variableResponse{Variable: v, Legend: dashboard.Legend(v.Code)},
		Points:   points,
	})
}

// dateParam parses a date, defaulting to the last day in the dataset.
func dateParam(raw string, ds *dashboard.Dataset) (time.Time, error) {
	if raw == "" {
		_, last, ok := dashboard.DateRange(ds.Records)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: dataset is empty", domain.ErrUnavailable)
		}
		return last, nil
	}
	d, err := dashboard.ParseDate(raw)
	if err != nil {
		return time.Time{}, badRequest{msg: err.Error()}
	}
	return d, nil
}

func intParam(raw, name string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, badRequest{msg: fmt.Sprintf("invalid %s %q: want %d-%d", name, raw, lo, hi)}
	}
	return n, nil
}

func variableParam(raw string) (dashboard.Variable, error) {
	if raw == "" {
		raw = defaultVariable
	}
	v, ok := dashboard.LookupVariable(strings.ToUpper(raw))
	if !ok {
		return dashboard.Variable{}, badRequest{msg: fmt.Sprintf("unknown variable %q", raw)}
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
