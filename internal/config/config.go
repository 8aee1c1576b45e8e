// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// S3 holds the optional object-storage backend settings. Uploads go to
// the local filesystem unless all four fields are set.
type S3 struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Enabled reports whether the object-storage backend is fully configured.
func (s S3) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != "" && s.Bucket != ""
}

// Config is the full configuration surface of the service.
type Config struct {
	Addr           string
	DatabaseURL    string
	UploadDir      string
	SessionSecret  string
	SessionTTL     time.Duration
	MaxUploadBytes int64
	S3             S3
}

// Load reads configuration from the environment, applying defaults.
// The listen port defaults to 8080 and honors PORT when SHEETDROP_ADDR
// is unset.
func Load() (Config, error) {
	cfg := Config{
		Addr:          getenvDefault("SHEETDROP_ADDR", ""),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		UploadDir:     getenvDefault("SHEETDROP_UPLOAD_DIR", "uploads"),
		SessionSecret: os.Getenv("SHEETDROP_SESSION_SECRET"),
		SessionTTL:    12 * time.Hour,
		S3: S3{
			Endpoint:  os.Getenv("SHEETDROP_S3_ENDPOINT"),
			AccessKey: os.Getenv("SHEETDROP_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("SHEETDROP_S3_SECRET_KEY"),
			Bucket:    os.Getenv("SHEETDROP_S3_BUCKET"),
		},
	}

	if cfg.Addr == "" {
		cfg.Addr = ":" + getenvDefault("PORT", "8080")
	}

	if raw := os.Getenv("SHEETDROP_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionTTL = ttl
	}

	if raw := os.Getenv("SHEETDROP_MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, err
		}
		cfg.MaxUploadBytes = n
	}

	return cfg, nil
}

// getenvDefault reads an environment variable and returns a default value if not set.
func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
