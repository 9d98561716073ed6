package dashboard

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/kma-weather-etl/internal/adapter/filestore"
	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

type fixture struct {
	dir     string
	store   *filestore.Store
	weather string
	station string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	fx := &fixture{
		dir:     dir,
		store:   filestore.New(slog.New(slog.NewTextHandler(io.Discard, nil))),
		weather: filepath.Join(dir, "weather.csv"),
		station: filepath.Join(dir, "station_info.csv"),
	}
	require.NoError(t, fx.store.SaveStations(fx.station, []domain.Station{
		{ID: 108, Name: "서울", Latitude: f(37.57), Longitude: f(126.97)},
		{ID: 159, Name: "부산", Latitude: f(35.1), Longitude: f(129.03)},
	}))
	require.NoError(t, fx.store.SaveObservations(fx.weather, []domain.Observation{
		{Time: "202401150100", StationID: "159", AirTemp: f(4)},
		{Time: "202401150000", StationID: "108", AirTemp: f(-5)},
		{Time: "202401150000", StationID: "999"},
	}))
	return fx
}

func (fx *fixture) service(cacheSize int) *Service {
	return NewService(fx.store, fx.weather, fx.station, cacheSize,
		slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestService_Dataset(t *testing.T) {
	fx := newFixture(t)
	svc := fx.service(1)

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 2, "unmatched station dropped")
	assert.Equal(t, "서울", ds.Records[0].StationName, "sorted by time")
	assert.Equal(t, []string{"부산", "서울"}, ds.Stations)
	assert.Equal(t, 2.0, testutil.ToFloat64(svc.metrics.MergedRecords))
}

func TestService_Dataset_Memoized(t *testing.T) {
	fx := newFixture(t)
	svc := fx.service(1)

	ds1, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	ds2, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Same(t, ds1, ds2)
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.DashboardCache.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(svc.metrics.DashboardCache.WithLabelValues("hit")))
}

func TestService_SetFiles_EvictsStale(t *testing.T) {
	fx := newFixture(t)
	svc := fx.service(1)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	other := filepath.Join(fx.dir, "other.parquet")
	require.NoError(t, fx.store.SaveObservations(other, []domain.Observation{{Time: "202402010000", StationID: "108"}}))
	svc.SetFiles(other, fx.station)

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, other, ds.WeatherFile)
	assert.Equal(t, 1, svc.cache.size())

	svc.SetFiles(fx.weather, fx.station)
	again, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, again, "evicted entry is reloaded")
}

func TestService_Dataset_ReloadsRewrittenFile(t *testing.T) {
	fx := newFixture(t)
	svc := fx.service(1)

	_, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	require.NoError(t, fx.store.SaveObservations(fx.weather, []domain.Observation{{Time: "202401150000", StationID: "108"}}))
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(fx.weather, later, later))

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.Records, 1)
}

func TestService_Dataset_MissingFiles(t *testing.T) {
	fx := newFixture(t)
	svc := fx.service(1)

	svc.SetFiles(filepath.Join(fx.dir, "missing.csv"), fx.station)
	_, err := svc.Dataset(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "missing.csv")

	svc.SetFiles(fx.weather, filepath.Join(fx.dir, "nostations.csv"))
	err = svc.CheckReadiness(context.Background())
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestService_CheckReadiness(t *testing.T) {
	fx := newFixture(t)
	assert.NoError(t, fx.service(1).CheckReadiness(context.Background()))
}
