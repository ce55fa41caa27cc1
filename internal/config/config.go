package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost     string `toml:"postgres_host"`
	PostgresPort     string `toml:"postgres_port"`
	PostgresDBName   string `toml:"postgres_db_name"`
	PostgresUser     string `toml:"postgres_user"`
	PostgresSSLMode  string `toml:"postgres_ssl_mode"`
	PostgresMaxConns int32  `toml:"postgres_max_conns"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	StaticFilesPath        string   `toml:"static_files_path"`
	AllowedOrigins         []string `toml:"allowed_origins"`
	SyncRateLimitPerMinute int      `toml:"sync_rate_limit_per_minute"`

	// strava
	StravaBaseURL      string   `toml:"strava_base_url"`
	StravaAuthURL      string   `toml:"strava_auth_url"`
	StravaTokenURL     string   `toml:"strava_token_url"`
	StravaRedirectURL  string   `toml:"strava_redirect_url"`
	StravaPerPage      int      `toml:"strava_per_page"`
	StravaMaxPages     int      `toml:"strava_max_pages"`
	StravaRefreshAhead Duration `toml:"strava_refresh_ahead"`
	RaceWorkoutTypes   []int    `toml:"race_workout_types"`
	SyncOnStartup      bool     `toml:"sync_on_startup"`

	// google sheets / photos
	RacesSheetTitle    string `toml:"races_sheet_title"`
	PhotosDriveEnabled bool   `toml:"photos_drive_enabled"`
	PhotosBucket       string `toml:"photos_bucket"`

	// utmb
	UtmbBaseURL  string   `toml:"utmb_base_url"`
	UtmbCacheTTL Duration `toml:"utmb_cache_ttl"`
}

// Duration lets TOML values like "5m" decode into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the section for env,
// with defaults applied to unset values.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.PostgresSSLMode == "" {
		c.PostgresSSLMode = "disable"
	}
	if c.SyncRateLimitPerMinute == 0 {
		c.SyncRateLimitPerMinute = 5
	}
	if c.StravaBaseURL == "" {
		c.StravaBaseURL = "https://www.strava.com/api/v3"
	}
	if c.StravaAuthURL == "" {
		c.StravaAuthURL = "https://www.strava.com/oauth/authorize"
	}
	if c.StravaTokenURL == "" {
		c.StravaTokenURL = "https://www.strava.com/oauth/token"
	}
	if c.StravaPerPage == 0 {
		c.StravaPerPage = 100
	}
	if c.StravaMaxPages == 0 {
		c.StravaMaxPages = 1
	}
	if c.StravaRefreshAhead.Duration == 0 {
		c.StravaRefreshAhead.Duration = 5 * time.Minute
	}
	if c.RaceWorkoutTypes == nil {
		c.RaceWorkoutTypes = []int{1}
	}
	if c.RacesSheetTitle == "" {
		c.RacesSheetTitle = "Races"
	}
	if c.UtmbBaseURL == "" {
		c.UtmbBaseURL = "https://utmb.world"
	}
	if c.UtmbCacheTTL.Duration == 0 {
		c.UtmbCacheTTL.Duration = 12 * time.Hour
	}
}

func (c *Config) validate() error {
	if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDBName == "" {
		return errors.New("postgres host, port and db name must be set")
	}
	if c.RedisHost == "" || c.RedisPort == "" {
		return errors.New("redis host and port must be set")
	}
	if c.StravaPerPage < 1 || c.StravaPerPage > 200 {
		return fmt.Errorf("strava_per_page must be in [1, 200], got %d", c.StravaPerPage)
	}
	if c.StravaMaxPages < 1 {
		return fmt.Errorf("strava_max_pages must be positive, got %d", c.StravaMaxPages)
	}
	return nil
}
