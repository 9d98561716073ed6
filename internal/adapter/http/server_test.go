package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/kma-weather-etl/internal/adapter/http"
	"github.com/couchcryptid/kma-weather-etl/internal/dashboard"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

type mockProvider struct {
	ds  *dashboard.Dataset
	err error
}

func (m *mockProvider) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockProvider) Dataset(_ context.Context) (*dashboard.Dataset, error) {
	return m.ds, m.err
}

func f(v float64) *float64 { return &v }

func testDataset() *dashboard.Dataset {
	obs := []domain.Observation{
		{Time: "202401150000", StationID: "108", AirTemp: f(-5), Rain: f(0)},
		{Time: "202401150900", StationID: "108", AirTemp: f(1), Rain: f(1.5), Humidity: f(80)},
		{Time: "202401150900", StationID: "159", AirTemp: f(8), Rain: f(0)},
		{Time: "202401160900", StationID: "159", AirTemp: f(9)},
	}
	stations := []domain.Station{
		{ID: 108, Name: "서울", Latitude: f(37.57), Longitude: f(126.97)},
		{ID: 159, Name: "부산", Latitude: f(35.1), Longitude: f(129.03)},
	}
	records := domain.Merge(obs, stations)
	return &dashboard.Dataset{Records: records, Stations: dashboard.StationNames(records)}
}

func newTestServer(p *mockProvider) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, slog.Default())
}

func get(t *testing.T, srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	err := fmt.Errorf("%w: weather.csv not found", domain.ErrUnavailable)
	rec := get(t, newTestServer(&mockProvider{err: err}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Contains(t, body["error"], "weather.csv")
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAPI_Unavailable(t *testing.T) {
	srv := newTestServer(&mockProvider{err: fmt.Errorf("%w: station_info.csv not found", domain.ErrUnavailable)})
	for _, path := range []string{"/api/stations", "/api/range", "/api/snapshot", "/api/summary", "/api/series"} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "station_info.csv", path)
	}
}

func TestAPI_InternalError(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{err: errors.New("decode failed")}), "/api/stations")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAPI_Stations(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/stations")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"부산", "서울"}, body["stations"])
}

func TestAPI_Range(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/range")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "2024-01-15", body["first"])
	assert.Equal(t, "2024-01-16", body["last"])
}

func TestAPI_Range_Empty(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: &dashboard.Dataset{}}), "/api/range")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAPI_Variables(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{}), "/api/variables")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []struct {
		Code   string `json:"code"`
		Legend []struct {
			Color string `json:"color"`
		} `json:"legend"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 4)
	assert.Equal(t, "TA", body[0].Code)
	assert.Len(t, body[0].Legend, 4)
}

func TestAPI_Snapshot(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/snapshot?date=2024-01-15&hour=9&variable=hm")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Date     string `json:"date"`
		Hour     int    `json:"hour"`
		Variable struct {
			Code string `json:"code"`
		} `json:"variable"`
		Points []dashboard.SnapshotPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-15", body.Date)
	assert.Equal(t, 9, body.Hour)
	assert.Equal(t, "HM", body.Variable.Code)
	require.Len(t, body.Points, 2)
	assert.Equal(t, "blue", body.Points[0].Color)
	assert.Equal(t, "gray", body.Points[1].Color, "missing humidity")
}

func TestAPI_Snapshot_Defaults(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/snapshot")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Date   string                    `json:"date"`
		Hour   int                       `json:"hour"`
		Points []dashboard.SnapshotPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-01-16", body.Date, "defaults to the last day")
	assert.Equal(t, 9, body.Hour)
	require.Len(t, body.Points, 1)
	assert.Equal(t, "부산", body.Points[0].StationName)
}

func TestAPI_BadParams(t *testing.T) {
	srv := newTestServer(&mockProvider{ds: testDataset()})
	for _, path := range []string{
		"/api/snapshot?hour=24",
		"/api/snapshot?hour=noon",
		"/api/snapshot?variable=PA",
		"/api/summary?date=15-01-2024",
		"/api/series?days=-1",
	} {
		rec := get(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestAPI_Summary(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/summary?date=2024-01-15")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[dashboard.Summary](t, rec)
	require.Len(t, body.Stations, 2)
	require.NotNil(t, body.MeanMaxTemp)
	assert.InDelta(t, 4.5, *body.MeanMaxTemp, 1e-9)
	assert.InDelta(t, 0.75, *body.MeanRain, 1e-9)
}

func TestAPI_Series(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/series?stations=서울&date=2024-01-16&days=30")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stations []string                `json:"stations"`
		From     string                  `json:"from"`
		Points   []dashboard.SeriesPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"서울"}, body.Stations)
	assert.Equal(t, "2023-12-17", body.From)
	assert.Len(t, body.Points, 2)
}

func TestAPI_Series_DefaultStations(t *testing.T) {
	rec := get(t, newTestServer(&mockProvider{ds: testDataset()}), "/api/series?date=2024-01-16")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Stations []string                `json:"stations"`
		Points   []dashboard.SeriesPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"서울", "부산"}, body.Stations)
	assert.Len(t, body.Points, 4)
}
