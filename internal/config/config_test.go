package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

const testAuthKey = "test-auth-key"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.AuthKey)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, "station_info.csv", cfg.StationFile)
	assert.Empty(t, cfg.WeatherFile)
	assert.Equal(t, domain.YearMonth{Year: 2024, Month: time.January}, cfg.CollectFrom)
	assert.Equal(t, domain.YearMonth{Year: 2025, Month: time.October}, cfg.CollectTo)
	assert.Equal(t, 2*time.Second, cfg.RequestDelay)
	assert.Equal(t, 120*time.Second, cfg.StationTimeout)
	assert.Equal(t, 300*time.Second, cfg.MonthlyTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1, cfg.DashboardCacheSize)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "kma-observations", cfg.KafkaTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KMA_AUTH_KEY", testAuthKey)
	t.Setenv("KMA_BASE_URL", "http://localhost:9000/")
	t.Setenv("STATION_FILE", "stations.csv")
	t.Setenv("WEATHER_FILE", "weather.parquet")
	t.Setenv("COLLECT_FROM", "2023-06")
	t.Setenv("COLLECT_TO", "2023-08")
	t.Setenv("REQUEST_DELAY", "500ms")
	t.Setenv("STATION_TIMEOUT", "10s")
	t.Setenv("MONTHLY_TIMEOUT", "1m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DASHBOARD_CACHE_SIZE", "4")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-topic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testAuthKey, cfg.AuthKey)
	assert.Equal(t, testAuthKey, cfg.StationAuthKey, "station key falls back to the auth key")
	assert.Equal(t, "http://localhost:9000", cfg.BaseURL)
	assert.Equal(t, "stations.csv", cfg.StationFile)
	assert.Equal(t, "weather.parquet", cfg.WeatherFile)
	assert.Equal(t, domain.YearMonth{Year: 2023, Month: time.June}, cfg.CollectFrom)
	assert.Equal(t, domain.YearMonth{Year: 2023, Month: time.August}, cfg.CollectTo)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, 10*time.Second, cfg.StationTimeout)
	assert.Equal(t, time.Minute, cfg.MonthlyTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 4, cfg.DashboardCacheSize)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-topic", cfg.KafkaTopic)
}

func TestLoad_SeparateStationKey(t *testing.T) {
	t.Setenv("KMA_AUTH_KEY", testAuthKey)
	t.Setenv("KMA_STATION_AUTH_KEY", "station-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "station-key", cfg.StationAuthKey)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"REQUEST_DELAY", "soon"},
		{"REQUEST_DELAY", "-1s"},
		{"STATION_TIMEOUT", "0s"},
		{"MONTHLY_TIMEOUT", "bad"},
		{"COLLECT_FROM", "2024-13"},
		{"COLLECT_TO", "last month"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"DASHBOARD_CACHE_SIZE", "0"},
		{"DASHBOARD_CACHE_SIZE", "many"},
		{"KMA_BASE_URL", "not a url"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_RangeReversed(t *testing.T) {
	t.Setenv("COLLECT_FROM", "2025-01")
	t.Setenv("COLLECT_TO", "2024-01")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COLLECT_FROM")
}

func TestRequireAuthKey(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	err = cfg.RequireAuthKey()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KMA_AUTH_KEY")

	t.Setenv("KMA_AUTH_KEY", testAuthKey)
	cfg, err = Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireAuthKey())
}

func TestResolveWeatherFile(t *testing.T) {
	from := domain.YearMonth{Year: 2024, Month: time.January}
	to := domain.YearMonth{Year: 2025, Month: time.October}

	cfg := &Config{}
	assert.Equal(t, "kma_weather_202401-202510.csv", cfg.ResolveWeatherFile(from, to))

	cfg.WeatherFile = "custom.csv"
	assert.Equal(t, "custom.csv", cfg.ResolveWeatherFile(from, to))
}
