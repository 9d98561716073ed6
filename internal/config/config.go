package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
)

// DefaultBaseURL is the KMA API hub.
const DefaultBaseURL = "https://apihub.kma.go.kr"

// Config holds all service settings, populated from environment variables.
type Config struct {
	AuthKey        string `env:"KMA_AUTH_KEY"`
	StationAuthKey string `env:"KMA_STATION_AUTH_KEY"`
	BaseURL        string `env:"KMA_BASE_URL" validate:"required,url"`

	StationFile string `env:"STATION_FILE" validate:"required"`
	WeatherFile string `env:"WEATHER_FILE"` // empty = derived from the collection range

	CollectFrom    domain.YearMonth `env:"COLLECT_FROM"`
	CollectTo      domain.YearMonth `env:"COLLECT_TO"`
	RequestDelay   time.Duration    `env:"REQUEST_DELAY" validate:"gte=0"`
	StationTimeout time.Duration    `env:"STATION_TIMEOUT" validate:"gt=0"`
	MonthlyTimeout time.Duration    `env:"MONTHLY_TIMEOUT" validate:"gt=0"`

	HTTPAddr           string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel           string        `env:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	LogFormat          string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT"`
	DashboardCacheSize int           `env:"DASHBOARD_CACHE_SIZE" validate:"gte=1,lte=64"`

	// Optional Kafka publishing of collected observations.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" validate:"required_with=KafkaBrokers"`
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}()

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	requestDelay, err := parseDuration("REQUEST_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	stationTimeout, err := parseDuration("STATION_TIMEOUT", "120s")
	if err != nil {
		return nil, err
	}
	monthlyTimeout, err := parseDuration("MONTHLY_TIMEOUT", "300s")
	if err != nil {
		return nil, err
	}

	from, err := parseMonth("COLLECT_FROM", "2024-01")
	if err != nil {
		return nil, err
	}
	to, err := parseMonth("COLLECT_TO", "2025-10")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("DASHBOARD_CACHE_SIZE", 1)
	if err != nil {
		return nil, err
	}

	authKey := os.Getenv("KMA_AUTH_KEY")

	cfg := &Config{
		AuthKey:        authKey,
		StationAuthKey: sharedcfg.EnvOrDefault("KMA_STATION_AUTH_KEY", authKey),
		BaseURL:        strings.TrimRight(sharedcfg.EnvOrDefault("KMA_BASE_URL", DefaultBaseURL), "/"),

		StationFile: sharedcfg.EnvOrDefault("STATION_FILE", "station_info.csv"),
		WeatherFile: os.Getenv("WEATHER_FILE"),

		CollectFrom:    from,
		CollectTo:      to,
		RequestDelay:   requestDelay,
		StationTimeout: stationTimeout,
		MonthlyTimeout: monthlyTimeout,

		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:          strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout:    shutdownTimeout,
		DashboardCacheSize: cacheSize,

		KafkaBrokers: sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "kma-observations"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, validationError(err)
	}
	if cfg.CollectTo.Before(cfg.CollectFrom) {
		return nil, errors.New("COLLECT_FROM must not be after COLLECT_TO")
	}

	return cfg, nil
}

// RequireAuthKey fails when no KMA key is configured. Only commands that call
// the API need one.
func (c *Config) RequireAuthKey() error {
	if c.AuthKey == "" && c.StationAuthKey == "" {
		return errors.New("KMA_AUTH_KEY is required")
	}
	return nil
}

// KafkaEnabled reports whether collected observations should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ResolveWeatherFile returns WEATHER_FILE, or the default name for the range.
func (c *Config) ResolveWeatherFile(from, to domain.YearMonth) string {
	if c.WeatherFile != "" {
		return c.WeatherFile
	}
	return DefaultWeatherFile(from, to)
}

// DefaultWeatherFile names the observation table for a collection range.
func DefaultWeatherFile(from, to domain.YearMonth) string {
	return fmt.Sprintf("kma_weather_%s-%s.csv", from.Compact(), to.Compact())
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Errorf("%s is required", fe.Field())
	default:
		return fmt.Errorf("invalid %s: failed %q constraint", fe.Field(), fe.Tag())
	}
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseMonth(key, fallback string) (domain.YearMonth, error) {
	ym, err := domain.ParseYearMonth(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil {
		return domain.YearMonth{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return ym, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
