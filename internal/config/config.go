// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	BaseURL        string
	APIKey         string
	SecretKey      []byte // nil when CLASSFEED_SECRET_KEY is unset
	DBPath         string
	ListenAddr     string
	RequestTimeout time.Duration
	FeedRefresh    time.Duration // 0 disables background refresh in serve mode
	LogFile        string
}

// HasSecretKey returns true when a token encryption key is configured.
func (c *Config) HasSecretKey() bool {
	return len(c.SecretKey) > 0
}

// Warnings lists configuration problems that do not prevent startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.BaseURL == "" {
		warnings = append(warnings, "CLASSFEED_BASE_URL is not set; requests to the classroom server will fail")
	}
	if !c.HasSecretKey() {
		warnings = append(warnings, "CLASSFEED_SECRET_KEY is not set; sessions will not survive a restart")
	}
	return warnings
}

// Load reads configuration from environment variables and returns a validated Config.
// Nothing is required. Malformed values fail fast: CLASSFEED_SECRET_KEY must be
// 64 hex characters and CLASSFEED_REQUEST_TIMEOUT a positive duration.
// Optional variables with defaults: CLASSFEED_DB_PATH (classfeed.db),
// CLASSFEED_LISTEN_ADDR (127.0.0.1:8080), CLASSFEED_REQUEST_TIMEOUT (15s),
// CLASSFEED_FEED_REFRESH (2m, "0" disables).
func Load() (*Config, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("CLASSFEED_BASE_URL")), "/")
	apiKey := os.Getenv("CLASSFEED_API_KEY")

	var secretKey []byte
	if v, ok := os.LookupEnv("CLASSFEED_SECRET_KEY"); ok && v != "" {
		key, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("CLASSFEED_SECRET_KEY is not valid hex: %w", err)
		}
		if len(key) != 32 {
			return nil, fmt.Errorf("CLASSFEED_SECRET_KEY must decode to 32 bytes, got %d", len(key))
		}
		secretKey = key
	}

	requestTimeout := 15 * time.Second
	if v, ok := os.LookupEnv("CLASSFEED_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CLASSFEED_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("CLASSFEED_REQUEST_TIMEOUT must be positive, got %s", parsed)
		}
		requestTimeout = parsed
	}

	feedRefresh := 2 * time.Minute
	if v, ok := os.LookupEnv("CLASSFEED_FEED_REFRESH"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CLASSFEED_FEED_REFRESH has invalid duration %q: %w", v, err)
		}
		if parsed < 0 {
			return nil, fmt.Errorf("CLASSFEED_FEED_REFRESH must not be negative, got %s", parsed)
		}
		feedRefresh = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("CLASSFEED_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "classfeed.db"
	if v, ok := os.LookupEnv("CLASSFEED_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		SecretKey:      secretKey,
		DBPath:         dbPath,
		ListenAddr:     listenAddr,
		RequestTimeout: requestTimeout,
		FeedRefresh:    feedRefresh,
		LogFile:        os.Getenv("CLASSFEED_LOG_FILE"),
	}, nil
}
