package config

import (
	"time"

	"github.com/phrazzld/tasklist-api/internal/domain"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	CORS     CORSConfig     `mapstructure:"cors" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	// URL is a postgres connection string, or a file path for sqlite.
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	Issuer               string `mapstructure:"issuer" validate:"required"`
	Audience             string `mapstructure:"audience" validate:"required"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lte=44640"`
	BCryptCost           int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`

	LockoutThreshold     int `mapstructure:"lockout_threshold" validate:"gt=0"`
	LockoutMinutes       int `mapstructure:"lockout_minutes" validate:"gt=0"`
	FailureWindowMinutes int `mapstructure:"failure_window_minutes" validate:"gte=0"`

	PasswordMinLength     int  `mapstructure:"password_min_length" validate:"gte=1,lte=72"`
	PasswordRequireDigit  bool `mapstructure:"password_require_digit"`
	PasswordRequireLower  bool `mapstructure:"password_require_lower"`
	PasswordRequireUpper  bool `mapstructure:"password_require_upper"`
	PasswordRequireSymbol bool `mapstructure:"password_require_symbol"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1,dive,required"`
}

// TokenLifetime returns the access token lifetime.
func (a AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(a.TokenLifetimeMinutes) * time.Minute
}

// LockoutPolicy builds the login lockout policy.
func (a AuthConfig) LockoutPolicy() domain.LockoutPolicy {
	return domain.LockoutPolicy{
		Threshold: a.LockoutThreshold,
		Duration:  time.Duration(a.LockoutMinutes) * time.Minute,
		Window:    time.Duration(a.FailureWindowMinutes) * time.Minute,
	}
}

// PasswordPolicy builds the registration password policy.
func (a AuthConfig) PasswordPolicy() domain.PasswordPolicy {
	return domain.PasswordPolicy{
		MinLength:     a.PasswordMinLength,
		RequireDigit:  a.PasswordRequireDigit,
		RequireLower:  a.PasswordRequireLower,
		RequireUpper:  a.PasswordRequireUpper,
		RequireSymbol: a.PasswordRequireSymbol,
	}
}

// RequestTimeout returns the per-request deadline.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// ConnMaxLifetime returns the maximum lifetime of a pooled connection.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}
