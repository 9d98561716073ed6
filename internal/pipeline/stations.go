package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// StationSync refreshes the station file from the KMA directory.
type StationSync struct {
	source StationSource
	store  StationStore
	logger *slog.Logger
}

// NewStationSync creates a StationSync.
func NewStationSync(source StationSource, store StationStore, logger *slog.Logger) *StationSync {
	return &StationSync{source: source, store: store, logger: logger}
}

// Run fetches the directory and writes it to path. Any fetch failure aborts
// before the file is touched.
func (s *StationSync) Run(ctx context.Context, path string) (int, error) {
	s.logger.Info("station sync started", "path", path)

	stations, err := s.source.FetchStations(ctx)
	if err != nil {
		return 0, fmt.Errorf("station sync: %w", err)
	}
	if err := s.store.SaveStations(path, stations); err != nil {
		return 0, fmt.Errorf("station sync: %w", err)
	}

	s.logger.Info("station sync complete", "path", path, "stations", len(stations))
	return len(stations), nil
}
