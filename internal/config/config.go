package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/heroual/MTSAV/internal/auth"
	"github.com/heroual/MTSAV/internal/storage"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string   `env:"PORT" env-default:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:5173"`
	LogLevel       string   `env:"LOG_LEVEL" env-default:"info"`

	// WebSocket timeouts, in seconds
	WSReadTimeoutSec  int `env:"WS_READ_TIMEOUT" env-default:"60"`
	WSWriteTimeoutSec int `env:"WS_WRITE_TIMEOUT" env-default:"10"`

	MaxUploadMB       int64  `env:"MAX_UPLOAD_MB" env-default:"20"`
	SectorMappingFile string `env:"SECTOR_MAPPING_FILE"`

	GeminiAPIKey    string        `env:"GEMINI_API_KEY,API_KEY"`
	GeminiModel     string        `env:"GEMINI_MODEL" env-default:"gemini-3-pro-preview"`
	InsightsTimeout time.Duration `env:"INSIGHTS_TIMEOUT" env-default:"60s"`

	SkipAuth   bool   `env:"SKIP_AUTH" env-default:"false"`
	Env        string `env:"ENV" env-default:"development"`
	VerifyJWT  bool   `env:"VERIFY_JWT_SIGNATURE" env-default:"false"`
	OIDCIssuer string `env:"OIDC_ISSUER"`

	Archive storage.ArchiveConfig

	// Derived
	WSReadTimeout  time.Duration
	WSWriteTimeout time.Duration
	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.WSReadTimeoutSec <= 0 {
		return nil, fmt.Errorf("invalid WS_READ_TIMEOUT: %d", cfg.WSReadTimeoutSec)
	}
	if cfg.WSWriteTimeoutSec <= 0 {
		return nil, fmt.Errorf("invalid WS_WRITE_TIMEOUT: %d", cfg.WSWriteTimeoutSec)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %d", cfg.MaxUploadMB)
	}
	if cfg.Archive.Mode != storage.ArchiveModeNone && cfg.Archive.Mode != storage.ArchiveModeS3 {
		return nil, fmt.Errorf("invalid REPORT_ARCHIVE_MODE: %q", cfg.Archive.Mode)
	}

	cfg.WSReadTimeout = time.Duration(cfg.WSReadTimeoutSec) * time.Second
	cfg.WSWriteTimeout = time.Duration(cfg.WSWriteTimeoutSec) * time.Second

	// Calculate WebSocket constants
	cfg.PongWait = cfg.WSReadTimeout
	cfg.PingPeriod = (cfg.PongWait * 9) / 10 // Must be less than pongWait
	cfg.WriteWait = cfg.WSWriteTimeout
	cfg.MaxMessageSize = 4096 // filter messages carry multi-select lists

	origins := cfg.AllowedOrigins[:0]
	for _, origin := range cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	cfg.AllowedOrigins = origins

	return &cfg, nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// Auth returns the authenticator settings
func (c *Config) Auth() auth.Config {
	return auth.Config{
		SkipAuth:        c.SkipAuth,
		Env:             c.Env,
		VerifySignature: c.VerifyJWT,
		Issuer:          c.OIDCIssuer,
	}
}
