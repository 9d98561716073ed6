package pipeline

import (
	"context"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// StationSource fetches the station directory.
type StationSource interface {
	FetchStations(ctx context.Context) ([]domain.Station, error)
}

// MonthFetcher fetches one month of observations. Failures are reported in
// the result rather than returned.
type MonthFetcher interface {
	FetchMonth(ctx context.Context, ym domain.YearMonth) domain.MonthResult
}

// StationStore persists the station directory.
type StationStore interface {
	SaveStations(path string, stations []domain.Station) error
}

// ObservationStore persists the collected observation table.
type ObservationStore interface {
	SaveObservations(path string, obs []domain.Observation) error
}

// ObservationPublisher forwards collected observations downstream.
type ObservationPublisher interface {
	Publish(ctx context.Context, runID string, obs []domain.Observation) error
}
