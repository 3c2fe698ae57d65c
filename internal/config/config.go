package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultConfigAPIURL = "https://config-api-mja3.onrender.com"

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"

	defaultHTTPAddr         = ":8080"
	defaultConfigAPITimeout = 30 * time.Second
	defaultConfigAPIRetries = 2
	defaultScanPageLimit    = 200
	defaultScanDetailsTTL   = 5 * time.Minute
	defaultSessionLifetime  = 12 * time.Hour
	defaultScannerImage     = "playerunknown23/aegis:latest"
)

type Config struct {
	HTTPAddr         string
	MetricsAddr      string
	ConfigAPIURL     string
	ConfigAPITimeout time.Duration
	ConfigAPIRetries int
	ScanPageLimit    int
	ScanDetailsTTL   time.Duration
	AuthCookieSecure bool
	SessionLifetime  time.Duration
	SessionStore     string
	DatabaseURL      string
	ScannerImage     string
}

type LoadOptions struct {
	RequireDatabaseURL bool
}

func Load() (Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadForMigrations requires DATABASE_URL regardless of the session store.
func LoadForMigrations() (Config, error) {
	return LoadWithOptions(LoadOptions{RequireDatabaseURL: true})
}

func LoadWithOptions(opts LoadOptions) (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, err
		}
	}

	cfg := Config{
		HTTPAddr:         getenvDefault("HTTP_ADDR", defaultHTTPAddr),
		MetricsAddr:      strings.TrimSpace(os.Getenv("METRICS_ADDR")),
		ConfigAPIURL:     strings.TrimRight(strings.TrimSpace(getenvDefault("CONFIG_API_URL", DefaultConfigAPIURL)), "/"),
		ConfigAPITimeout: getenvDurationDefault("CONFIG_API_TIMEOUT", defaultConfigAPITimeout),
		ConfigAPIRetries: getenvNonNegativeIntDefault("CONFIG_API_RETRIES", defaultConfigAPIRetries),
		ScanPageLimit:    getenvIntDefault("SCAN_PAGE_LIMIT", defaultScanPageLimit),
		ScanDetailsTTL:   getenvDurationDefault("SCAN_DETAILS_TTL", defaultScanDetailsTTL),
		AuthCookieSecure: getenvBoolDefault("AUTH_COOKIE_SECURE", false),
		SessionLifetime:  getenvDurationDefault("SESSION_LIFETIME", defaultSessionLifetime),
		SessionStore:     strings.ToLower(strings.TrimSpace(getenvDefault("SESSION_STORE", SessionStoreMemory))),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ScannerImage:     getenvDefault("SCANNER_IMAGE", defaultScannerImage),
	}

	switch cfg.SessionStore {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if cfg.DatabaseURL == "" {
			return cfg, errors.New("DATABASE_URL is required when SESSION_STORE=postgres")
		}
	default:
		return cfg, fmt.Errorf("SESSION_STORE must be one of: %s, %s", SessionStoreMemory, SessionStorePostgres)
	}

	if cfg.ConfigAPIURL == "" {
		return cfg, errors.New("CONFIG_API_URL is required")
	}
	if opts.RequireDatabaseURL && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func getenvNonNegativeIntDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getenvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch v {
	case "1":
		return true
	case "0":
		return false
	default:
		return def
	}
}
