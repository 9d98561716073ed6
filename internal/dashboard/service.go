// Package dashboard serves the merged observation dataset and the queries the
// dashboard UI needs. Loaded datasets are memoized per input file pair.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

// Loader reads the persisted tables.
type Loader interface {
	LoadObservations(path string) ([]domain.Observation, error)
	LoadStations(path string) ([]domain.Station, error)
}

// Dataset is a merged, time-ordered view of one weather/station file pair.
type Dataset struct {
	WeatherFile string
	StationFile string
	Records     []domain.MergedRecord
	Stations    []string
	LoadedAt    time.Time
}

// cacheKey identifies a file pair as of its last modification, so a rewritten
// file is reloaded.
type cacheKey struct {
	weather, station       string
	weatherMod, stationMod time.Time
}

// Service loads and memoizes datasets.
type Service struct {
	loader  Loader
	logger  *slog.Logger
	metrics *observability.Metrics
	cache   *lruCache[cacheKey, *Dataset]

	mu          sync.RWMutex
	weatherFile string
	stationFile string

	loadMu sync.Mutex // serializes cache misses
}

// NewService creates a Service reading the given files.
func NewService(loader Loader, weatherFile, stationFile string, cacheSize int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		loader:      loader,
		logger:      logger,
		metrics:     metrics,
		cache:       newLRUCache[cacheKey, *Dataset](cacheSize),
		weatherFile: weatherFile,
		stationFile: stationFile,
	}
}

// SetFiles switches the input files. The next Dataset call loads them.
func (s *Service) SetFiles(weatherFile, stationFile string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weatherFile, s.stationFile = weatherFile, stationFile
}

// Files returns the current input files.
func (s *Service) Files() (weather, station string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weatherFile, s.stationFile
}

// Dataset returns the merged dataset for the current files. Missing input
// files report domain.ErrUnavailable.
func (s *Service) Dataset(_ context.Context) (*Dataset, error) {
	weather, station := s.Files()
	key, err := statKey(weather, station)
	if err != nil {
		return nil, err
	}

	if ds, ok := s.cache.get(key); ok {
		s.metrics.DashboardCache.WithLabelValues("hit").Inc()
		return ds, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if ds, ok := s.cache.get(key); ok {
		s.metrics.DashboardCache.WithLabelValues("hit").Inc()
		return ds, nil
	}
	s.metrics.DashboardCache.WithLabelValues("miss").Inc()

	ds, err := s.load(weather, station)
	if err != nil {
		return nil, err
	}
	s.cache.put(key, ds)
	return ds, nil
}

// CheckReadiness reports whether the current dataset can be served.
func (s *Service) CheckReadiness(ctx context.Context) error {
	_, err := s.Dataset(ctx)
	return err
}

func (s *Service) load(weather, station string) (*Dataset, error) {
	start := time.Now()

	obs, err := s.loader.LoadObservations(weather)
	if err != nil {
		return nil, unavailable(err, weather)
	}
	stations, err := s.loader.LoadStations(station)
	if err != nil {
		return nil, unavailable(err, station)
	}

	records := domain.Merge(obs, stations)
	ds := &Dataset{
		WeatherFile: weather,
		StationFile: station,
		Records:     records,
		Stations:    StationNames(records),
		LoadedAt:    time.Now(),
	}
	s.metrics.MergedRecords.Set(float64(len(records)))
	s.logger.Info("dataset loaded",
		"weather_file", weather,
		"station_file", station,
		"observations", len(obs),
		"merged", len(records),
		"dropped", len(obs)-len(records),
		"duration", time.Since(start),
	)
	return ds, nil
}

func statKey(weather, station string) (cacheKey, error) {
	wi, err := os.Stat(weather)
	if err != nil {
		return cacheKey{}, unavailable(err, weather)
	}
	si, err := os.Stat(station)
	if err != nil {
		return cacheKey{}, unavailable(err, station)
	}
	return cacheKey{weather: weather, station: station, weatherMod: wi.ModTime(), stationMod: si.ModTime()}, nil
}

func unavailable(err error, path string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s not found", domain.ErrUnavailable, path)
	}
	return err
}
