// Package config reads runtime settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

type Config struct {
	Port       string
	DBPath     string
	LogLevel   string
	LogFile    string
	Backend    string
	RemoteURL  string
	RemoteKey  string
	LegacyPath string

	S3Endpoint  string
	S3Bucket    string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	BackupCron  string
}

// Load reads envFile (when it exists) and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Port:        get("PAWLOG_PORT", "8080"),
		DBPath:      get("PAWLOG_DB_PATH", "pawlog.db"),
		LogLevel:    get("PAWLOG_LOG_LEVEL", "info"),
		LogFile:     get("PAWLOG_LOG_FILE", ""),
		Backend:     strings.ToLower(get("PAWLOG_BACKEND", BackendLocal)),
		RemoteURL:   get("PAWLOG_REMOTE_URL", ""),
		RemoteKey:   get("PAWLOG_REMOTE_KEY", ""),
		LegacyPath:  get("PAWLOG_LEGACY_PATH", ""),
		S3Endpoint:  get("PAWLOG_S3_ENDPOINT", ""),
		S3Bucket:    get("PAWLOG_S3_BUCKET", ""),
		S3Region:    get("PAWLOG_S3_REGION", "us-east-1"),
		S3AccessKey: get("PAWLOG_S3_ACCESS_KEY", ""),
		S3SecretKey: get("PAWLOG_S3_SECRET_KEY", ""),
		BackupCron:  get("PAWLOG_BACKUP_CRON", "0 3 * * *"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.RemoteURL == "" || c.RemoteKey == "" {
			return errors.New("remote backend requires PAWLOG_REMOTE_URL and PAWLOG_REMOTE_KEY")
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendLocal, BackendRemote)
	}
	return nil
}

// Remote reports whether records live in the hosted database.
func (c *Config) Remote() bool { return c.Backend == BackendRemote }

func get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
