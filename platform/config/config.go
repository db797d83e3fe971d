// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// QuickAuthConfig provides settings for Quick Auth token verification.
type QuickAuthConfig interface {
	// GetAppDomain returns the hostname tokens must be bound to.
	GetAppDomain() string
	// IsAppDomainFallback reports whether the domain is the insecure
	// localhost fallback (APP_URL unset or malformed).
	IsAppDomainFallback() bool
	GetQuickAuthURL() string
	GetQuickAuthTimeout() time.Duration
}

// NeynarConfig provides settings for the Neynar profile API.
type NeynarConfig interface {
	GetNeynarAPIKey() string
	GetNeynarBaseURL() string
	GetNeynarTimeout() time.Duration
}

// RedisConfig provides settings for the optional profile cache.
type RedisConfig interface {
	GetRedisAddr() string
	GetProfileCacheTTL() time.Duration
	IsProfileCacheEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env               string
	HTTPAddr          string
	DatabaseURL       string
	AppURL            string
	AppDomain         string
	AppDomainFallback bool
	QuickAuthURL      string
	QuickAuthTimeout  time.Duration
	NeynarAPIKey      string
	NeynarBaseURL     string
	NeynarTimeout     time.Duration
	RedisAddr         string
	ProfileCacheTTL   time.Duration
	CORSAllowAll      bool
	CORSOrigins       []string
	CORSAllowCreds    bool
}

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// QuickAuthConfig implementation
func (c *Config) GetAppDomain() string               { return c.AppDomain }
func (c *Config) IsAppDomainFallback() bool          { return c.AppDomainFallback }
func (c *Config) GetQuickAuthURL() string            { return c.QuickAuthURL }
func (c *Config) GetQuickAuthTimeout() time.Duration { return c.QuickAuthTimeout }

// NeynarConfig implementation
func (c *Config) GetNeynarAPIKey() string         { return c.NeynarAPIKey }
func (c *Config) GetNeynarBaseURL() string        { return c.NeynarBaseURL }
func (c *Config) GetNeynarTimeout() time.Duration { return c.NeynarTimeout }

// RedisConfig implementation
func (c *Config) GetRedisAddr() string              { return c.RedisAddr }
func (c *Config) GetProfileCacheTTL() time.Duration { return c.ProfileCacheTTL }
func (c *Config) IsProfileCacheEnabled() bool       { return c.RedisAddr != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	appURL := getEnv("APP_URL", "")
	appDomain, fallback := resolveAppDomain(appURL)

	cfg := &Config{
		Env:               getEnv("APP_ENV", "development"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		AppURL:            appURL,
		AppDomain:         appDomain,
		AppDomainFallback: fallback,
		QuickAuthURL:      getEnv("QUICK_AUTH_URL", "https://auth.farcaster.xyz"),
		QuickAuthTimeout:  mustDuration(getEnv("QUICK_AUTH_TIMEOUT", "10s")),
		NeynarAPIKey:      getEnv("NEYNAR_API_KEY", ""),
		NeynarBaseURL:     getEnv("NEYNAR_BASE_URL", "https://api.neynar.com"),
		NeynarTimeout:     mustDuration(getEnv("NEYNAR_TIMEOUT", "10s")),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		ProfileCacheTTL:   mustDuration(getEnv("PROFILE_CACHE_TTL", "5m")),
		CORSAllowAll:      corsAllowAll,
		CORSOrigins:       corsOrigins,
		CORSAllowCreds:    strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.NeynarAPIKey == "" {
		return nil, fmt.Errorf("NEYNAR_API_KEY is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

// resolveAppDomain derives the trusted verification domain from the app base
// URL. An unset or malformed URL yields the localhost fallback; token
// verification still runs but is bound to a domain no production client uses.
func resolveAppDomain(appURL string) (string, bool) {
	if appURL == "" {
		return "localhost", true
	}
	u, err := url.Parse(appURL)
	if err != nil || u.Hostname() == "" {
		return "localhost", true
	}
	return u.Hostname(), false
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
