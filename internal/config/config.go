// Package config provides configuration management for the shopcart server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultAuthMode        = "none"
	DefaultRedisKey        = "cart:default"
	DefaultNATSSubject     = "cart.events"
)

// EnvPrefix is prepended to every configuration key to form its
// environment variable name.
const EnvPrefix = "APP"

// Configuration keys. The environment variable for a key is
// EnvPrefix + "_" + upper(key).
const (
	KeyServerPort      = "server_port"
	KeyLogLevel        = "log_level"
	KeyShutdownTimeout = "shutdown_timeout"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyAuthMode        = "auth_mode"
	KeyBasicAuthUsers  = "basic_auth_users"
	KeyAPIKeys         = "api_keys"
	KeyJWTSecret       = "jwt_secret"
	KeyJWTIssuer       = "jwt_issuer"
	KeyJWTAudience     = "jwt_audience"
	KeyCatalogPath     = "catalog_path"
	KeyRedisAddr       = "redis_addr"
	KeyRedisPassword   = "redis_password"
	KeyRedisDB         = "redis_db"
	KeyRedisKey        = "redis_key"
	KeyNATSURL         = "nats_url"
	KeyNATSSubject     = "nats_subject"
)

// Environment variable names.
const (
	EnvConfigFile      = "APP_CONFIG_FILE"
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvAuthMode        = "APP_AUTH_MODE"
	EnvBasicAuthUsers  = "APP_BASIC_AUTH_USERS"
	EnvAPIKeys         = "APP_API_KEYS"   //nolint:gosec // env var name, not a credential
	EnvJWTSecret       = "APP_JWT_SECRET" //nolint:gosec // env var name, not a credential
	EnvJWTIssuer       = "APP_JWT_ISSUER"
	EnvJWTAudience     = "APP_JWT_AUDIENCE"
	EnvCatalogPath     = "APP_CATALOG_PATH"
	EnvRedisAddr       = "APP_REDIS_ADDR"
	EnvRedisPassword   = "APP_REDIS_PASSWORD" //nolint:gosec // env var name, not a credential
	EnvRedisDB         = "APP_REDIS_DB"
	EnvRedisKey        = "APP_REDIS_KEY"
	EnvNATSURL         = "APP_NATS_URL"
	EnvNATSSubject     = "APP_NATS_SUBJECT"
)

// Config holds the application configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Authentication mode: none, basic, apikey, jwt, multi.
	AuthMode string

	// Basic auth settings (format: "user1:bcrypt_hash,user2:bcrypt_hash").
	BasicAuthUsers string

	// API key settings (format: "key1:name1,key2:name2").
	APIKeys string

	// JWT bearer settings. Tokens are HMAC-signed with JWTSecret.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	// CatalogPath is the JSON seed file for products and orders.
	CatalogPath string

	// Redis cart snapshot settings (disabled when RedisAddr is empty).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	// NATS cart event settings (disabled when NATSURL is empty).
	NATSURL     string
	NATSSubject string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidAuthMode        = errors.New(
		"auth mode must be one of: none, basic, apikey, jwt, multi",
	)
	ErrInvalidBasicAuthConfig = errors.New(
		"basic auth users must be set when auth mode is basic",
	)
	ErrInvalidAPIKeyConfig = errors.New(
		"API keys must be set when auth mode is apikey",
	)
	ErrInvalidJWTConfig = errors.New(
		"JWT secret must be set when auth mode is jwt",
	)
	ErrInvalidMultiAuthConfig = errors.New(
		"at least one auth config must be provided when auth mode is multi",
	)
	ErrInvalidRedisDB = errors.New("redis db must not be negative")
)

// Load reads configuration from defaults, an optional config file named by
// APP_CONFIG_FILE, and environment variables, in increasing priority.
func Load() (*Config, error) {
	v := newViper()

	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := cfg.loadFrom(v); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// newViper returns a viper instance bound to APP_* environment variables
// with every key defaulted, so AutomaticEnv can resolve all of them.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyServerPort, DefaultServerPort)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyShutdownTimeout, DefaultShutdownTimeout)
	v.SetDefault(KeyMetricsEnabled, DefaultMetricsEnabled)
	v.SetDefault(KeyAuthMode, DefaultAuthMode)
	v.SetDefault(KeyBasicAuthUsers, "")
	v.SetDefault(KeyAPIKeys, "")
	v.SetDefault(KeyJWTSecret, "")
	v.SetDefault(KeyJWTIssuer, "")
	v.SetDefault(KeyJWTAudience, "")
	v.SetDefault(KeyCatalogPath, "")
	v.SetDefault(KeyRedisAddr, "")
	v.SetDefault(KeyRedisPassword, "")
	v.SetDefault(KeyRedisDB, 0)
	v.SetDefault(KeyRedisKey, DefaultRedisKey)
	v.SetDefault(KeyNATSURL, "")
	v.SetDefault(KeyNATSSubject, DefaultNATSSubject)

	return v
}

// loadFrom copies values out of v, rejecting malformed numbers, booleans
// and durations.
func (c *Config) loadFrom(v *viper.Viper) error {
	var err error

	if c.ServerPort, err = cast.ToIntE(v.Get(KeyServerPort)); err != nil {
		return parseError(KeyServerPort, err)
	}

	if c.ShutdownTimeout, err = cast.ToDurationE(v.Get(KeyShutdownTimeout)); err != nil {
		return parseError(KeyShutdownTimeout, err)
	}

	if c.MetricsEnabled, err = cast.ToBoolE(v.Get(KeyMetricsEnabled)); err != nil {
		return parseError(KeyMetricsEnabled, err)
	}

	if c.RedisDB, err = cast.ToIntE(v.Get(KeyRedisDB)); err != nil {
		return parseError(KeyRedisDB, err)
	}

	c.LogLevel = v.GetString(KeyLogLevel)
	c.AuthMode = v.GetString(KeyAuthMode)
	c.BasicAuthUsers = v.GetString(KeyBasicAuthUsers)
	c.APIKeys = v.GetString(KeyAPIKeys)
	c.JWTSecret = v.GetString(KeyJWTSecret)
	c.JWTIssuer = v.GetString(KeyJWTIssuer)
	c.JWTAudience = v.GetString(KeyJWTAudience)
	c.CatalogPath = v.GetString(KeyCatalogPath)
	c.RedisAddr = v.GetString(KeyRedisAddr)
	c.RedisPassword = v.GetString(KeyRedisPassword)
	c.RedisKey = v.GetString(KeyRedisKey)
	c.NATSURL = v.GetString(KeyNATSURL)
	c.NATSSubject = v.GetString(KeyNATSSubject)

	return nil
}

// parseError names the environment variable behind key.
func parseError(key string, err error) error {
	return fmt.Errorf("parsing %s_%s: %w", EnvPrefix, strings.ToUpper(key), err)
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	if c.RedisDB < 0 {
		return ErrInvalidRedisDB
	}

	return nil
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	return nil
}

// validateAuth validates authentication configuration.
func (c *Config) validateAuth() error {
	authMode := c.authModeOrDefault()

	validAuthModes := map[string]bool{
		"none":   true,
		"basic":  true,
		"apikey": true,
		"jwt":    true,
		"multi":  true,
	}
	if !validAuthModes[authMode] {
		return ErrInvalidAuthMode
	}

	switch authMode {
	case "basic":
		if c.BasicAuthUsers == "" {
			return ErrInvalidBasicAuthConfig
		}
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
	case "jwt":
		if c.JWTSecret == "" {
			return ErrInvalidJWTConfig
		}
	case "multi":
		if !c.HasAnyAuthConfig() {
			return ErrInvalidMultiAuthConfig
		}
	}

	return nil
}

// authModeOrDefault returns the auth mode, defaulting to "none" if empty.
func (c *Config) authModeOrDefault() string {
	if c.AuthMode == "" {
		return DefaultAuthMode
	}
	return c.AuthMode
}

// HasAnyAuthConfig reports whether at least one authenticator is configured.
func (c *Config) HasAnyAuthConfig() bool {
	return c.BasicAuthUsers != "" ||
		c.APIKeys != "" ||
		c.JWTSecret != ""
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}
