package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Handicap      HandicapConfig      `yaml:"handicap"`
	Queue         QueueConfig         `yaml:"queue"`
	Observability ObservabilityConfig `yaml:"observability"`
	Scoring       ScoringConfig       `yaml:"scoring"`
}

// PostgresConfig holds Postgres configuration. An empty DSN runs the service
// on in-memory storage with no posting queue.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// HTTPConfig holds the API server configuration.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
	// RateLimit and Burst bound reads per client IP.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
	// WriteRateLimit and WriteBurst bound writes per token subject.
	WriteRateLimit  float64       `yaml:"write_rate_limit"`
	WriteBurst      int           `yaml:"write_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// JWTConfig holds JWT configuration. An empty secret disables auth on write
// routes.
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// HandicapConfig holds the handicap authority client configuration.
type HandicapConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// QueueConfig holds the posting queue configuration.
type QueueConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	MaxWorkers    int     `yaml:"max_workers"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
	LogLevel       string `yaml:"log_level"`
}

// ScoringConfig holds scoring engine settings.
type ScoringConfig struct {
	// DefaultView is applied when a request names no view.
	DefaultView string `yaml:"default_view"`
	// CatalogPath is a directory of extra spec YAML files layered over the
	// built-in seeds.
	CatalogPath string `yaml:"catalog_path"`
}

// LoadConfig loads the configuration from a YAML file. A .env file in the
// working directory is loaded first; environment variables override the
// file.
func LoadConfig(filename string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("HANDICAP_API_URL"); v != "" {
		cfg.Handicap.BaseURL = v
	}
	if v := os.Getenv("HANDICAP_API_TOKEN"); v != "" {
		cfg.Handicap.Token = v
	}
	if v := os.Getenv("HANDICAP_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid HANDICAP_API_TIMEOUT value: %v", err)
		}
		cfg.Handicap.Timeout = d
	}
	if v := os.Getenv("POSTING_RATE_PER_SEC"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid POSTING_RATE_PER_SEC value: %v", err)
		}
		cfg.Queue.RatePerSecond = f
	}
	if v := os.Getenv("POSTING_MAX_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POSTING_MAX_WORKERS value: %v", err)
		}
		cfg.Queue.MaxWorkers = n
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}
	if v := os.Getenv("SCORING_CATALOG_PATH"); v != "" {
		cfg.Scoring.CatalogPath = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.RateLimit == 0 {
		cfg.HTTP.RateLimit = 20
	}
	if cfg.HTTP.Burst == 0 {
		cfg.HTTP.Burst = 40
	}
	if cfg.HTTP.WriteRateLimit == 0 {
		cfg.HTTP.WriteRateLimit = 5
	}
	if cfg.HTTP.WriteBurst == 0 {
		cfg.HTTP.WriteBurst = 10
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Handicap.Timeout == 0 {
		cfg.Handicap.Timeout = 15 * time.Second
	}
	if cfg.Queue.RatePerSecond == 0 {
		cfg.Queue.RatePerSecond = 2
	}
	if cfg.Queue.Burst == 0 {
		cfg.Queue.Burst = 1
	}
	if cfg.Queue.MaxWorkers == 0 {
		cfg.Queue.MaxWorkers = 5
	}
	if cfg.Observability.Environment == "" {
		cfg.Observability.Environment = "development"
	}
	if cfg.Scoring.DefaultView == "" {
		cfg.Scoring.DefaultView = "points"
	}
}
