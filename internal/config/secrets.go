package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Secrets are never stored in the TOML file.
type Secrets struct {
	StravaClientID     string `env:"STRAVA_CLIENT_ID"`
	StravaClientSecret string `env:"STRAVA_CLIENT_SECRET"`

	GoogleSpreadsheetID     string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleCredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	GoogleDrivePhotosFolder string `env:"GOOGLE_DRIVE_PHOTOS_FOLDER_ID"`

	UtmbRunnerID   string `env:"UTMB_RUNNER_ID"`
	UtmbRunnerName string `env:"UTMB_RUNNER_NAME"`

	PostgresPassword string `env:"RUNDASH_POSTGRES_PASS"`
	RedisPassword    string `env:"RUNDASH_REDIS_PASS"`
	SentryDSN        string `env:"SENTRY_DSN"`

	// bcrypt hash of the secret expected in the X-Sync-Token header
	SyncTokenHash string `env:"RUNDASH_SYNC_TOKEN_HASH"`

	HoneycombEnabled bool   `env:"HONEYCOMB_ENABLED, default=false"`
	HoneycombApiKey  string `env:"HONEYCOMB_API_KEY"`
	OtelServiceName  string `env:"OTEL_SERVICE_NAME, default=rundash"`
}

// LoadSecrets reads the optional .env files and then the process environment.
// Values already present in the environment win over .env entries.
func LoadSecrets(ctx context.Context, dotEnvFiles ...string) (*Secrets, error) {
	for _, f := range dotEnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return loadSecrets(ctx, envconfig.OsLookuper())
}

func loadSecrets(ctx context.Context, lookuper envconfig.Lookuper) (*Secrets, error) {
	var s Secrets
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &s,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	return &s, nil
}

// Missing returns the names of secrets the service can run without,
// but with the named integration disabled.
func (s *Secrets) Missing() []string {
	var missing []string
	if s.StravaClientID == "" || s.StravaClientSecret == "" {
		missing = append(missing, "STRAVA_CLIENT_ID/STRAVA_CLIENT_SECRET")
	}
	if s.GoogleSpreadsheetID == "" {
		missing = append(missing, "GOOGLE_SPREADSHEET_ID")
	}
	if s.UtmbRunnerID == "" || s.UtmbRunnerName == "" {
		missing = append(missing, "UTMB_RUNNER_ID/UTMB_RUNNER_NAME")
	}
	if s.SyncTokenHash == "" {
		missing = append(missing, "RUNDASH_SYNC_TOKEN_HASH")
	}
	return missing
}
