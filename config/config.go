package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultUserAgent is a stock desktop Chrome on Windows.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultAcceptLanguage prefers Japanese, then English.
const DefaultAcceptLanguage = "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	CORS   CORSConfig   `yaml:"cors"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"` // default: "0.0.0.0"
	Port int    `yaml:"port"` // default: 3000
	Mode string `yaml:"mode"` // "debug", "release", "test"; default: "release"
}

// CORSConfig controls which browser origins may call the API.
type CORSConfig struct {
	// Mode is "all" or "origin". default: "all"
	Mode string `yaml:"mode"`

	// ClientURL is the allowed origin when Mode is "origin".
	ClientURL string `yaml:"client_url"`
}

// FetchConfig controls the outbound product page request.
type FetchConfig struct {
	// Timeout bounds the whole fetch including the body read.
	Timeout time.Duration `yaml:"timeout"` // default: 15s

	// MaxBodyBytes caps how much of the response is read.
	MaxBodyBytes int64 `yaml:"max_body_bytes"` // default: 10 MiB

	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int `yaml:"max_redirects"` // default: 5

	UserAgent      string `yaml:"user_agent"`
	AcceptLanguage string `yaml:"accept_language"`

	// TLSFingerprint dials HTTPS with a Chrome ClientHello.
	TLSFingerprint bool `yaml:"tls_fingerprint"` // default: true
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "text"; default: "json"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Mode: "release",
		},
		CORS: CORSConfig{
			Mode: "all",
		},
		Fetch: FetchConfig{
			Timeout:        15 * time.Second,
			MaxBodyBytes:   10 << 20,
			MaxRedirects:   5,
			UserAgent:      DefaultUserAgent,
			AcceptLanguage: DefaultAcceptLanguage,
			TLSFingerprint: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// PRODUCTINFO_CONFIG, and finally environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("PRODUCTINFO_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = envOr("HOST", c.Server.Host)
	c.Server.Port = envIntOr("PORT", c.Server.Port)
	c.Server.Mode = envOr("GIN_MODE", c.Server.Mode)

	c.CORS.Mode = envOr("CORS_MODE", c.CORS.Mode)
	c.CORS.ClientURL = envOr("CLIENT_URL", c.CORS.ClientURL)

	c.Fetch.Timeout = envDurationOr("FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.MaxBodyBytes = int64(envIntOr("FETCH_MAX_BODY_BYTES", int(c.Fetch.MaxBodyBytes)))
	c.Fetch.MaxRedirects = envIntOr("FETCH_MAX_REDIRECTS", c.Fetch.MaxRedirects)
	c.Fetch.UserAgent = envOr("FETCH_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.AcceptLanguage = envOr("FETCH_ACCEPT_LANGUAGE", c.Fetch.AcceptLanguage)
	c.Fetch.TLSFingerprint = envBoolOr("FETCH_TLS_FINGERPRINT", c.Fetch.TLSFingerprint)

	c.Log.Level = envOr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("LOG_FORMAT", c.Log.Format)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
