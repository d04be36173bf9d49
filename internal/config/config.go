package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Host                string `yaml:"host"`
		Port                int    `yaml:"port"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	} `yaml:"server"`

	Logging struct {
		Level   string `yaml:"level"`
		Console bool   `yaml:"console"`
	} `yaml:"logging"`

	Rooms struct {
		CatalogPath          string `yaml:"catalog_path"`
		FirstNumber          int64  `yaml:"first_number"`
		WatchIntervalSeconds int    `yaml:"watch_interval_seconds"`
	} `yaml:"rooms"`

	Availability struct {
		// IntervalOnly drops the cached room-status fast reject.
		IntervalOnly bool `yaml:"interval_only"`
	} `yaml:"availability"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Idempotency struct {
		Enabled    bool `yaml:"enabled"`
		TTLSeconds int  `yaml:"ttl_seconds"`
	} `yaml:"idempotency"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		GRPCHealthPort    int  `yaml:"grpc_health_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Telegram struct {
		BotToken string  `yaml:"bot_token"`
		Debug    bool    `yaml:"debug"`
		Managers []int64 `yaml:"managers"`
	} `yaml:"telegram"`

	Google struct {
		Enabled           bool    `yaml:"enabled"`
		CredentialsPath   string  `yaml:"credentials_path"`
		SpreadsheetID     string  `yaml:"spreadsheet_id"`
		SheetName         string  `yaml:"sheet_name"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"google"`

	Report struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		HotelName     string `yaml:"hotel_name"`
	} `yaml:"report"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Rooms.CatalogPath == "" {
		c.Rooms.CatalogPath = "configs/rooms.yaml"
	}
	if c.Rooms.FirstNumber <= 0 {
		c.Rooms.FirstNumber = 1
	}
	if c.Idempotency.TTLSeconds <= 0 {
		c.Idempotency.TTLSeconds = 24 * 60 * 60
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 20
	}
	if c.Monitoring.HealthCheckPort == 0 {
		c.Monitoring.HealthCheckPort = 8090
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Google.SheetName == "" {
		c.Google.SheetName = "Invoices"
	}
	if c.Google.RequestsPerSecond <= 0 {
		c.Google.RequestsPerSecond = 1
	}
	if c.Report.HotelName == "" {
		c.Report.HotelName = "hotel"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second cannot be negative")
	}
	if c.Google.Enabled && c.Google.SpreadsheetID == "" {
		return fmt.Errorf("google.spreadsheet_id is required when google.enabled is set")
	}
	if c.Report.Enabled && c.Report.IntervalHours < 0 {
		return fmt.Errorf("report.interval_hours cannot be negative")
	}
	return nil
}

// Addr is the HTTP API listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) ReadTimeout() time.Duration {
	if c.Server.ReadTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

func (c *Config) WriteTimeout() time.Duration {
	if c.Server.WriteTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.Idempotency.TTLSeconds) * time.Second
}

func (c *Config) RoomsWatchInterval() time.Duration {
	if c.Rooms.WatchIntervalSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Rooms.WatchIntervalSeconds) * time.Second
}

func (c *Config) ReportInterval() time.Duration {
	if c.Report.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Report.IntervalHours) * time.Hour
}
