package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TASKLIST_AUTH_JWT_SECRET for auth.jwt_secret.
const EnvPrefix = "TASKLIST"

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. Returns a populated Config struct or an error if
// loading/validation fails.
func Load() (*Config, error) {
	return LoadFromDir(".")
}

// LoadFromDir is Load with an explicit directory to search for config.yaml.
func LoadFromDir(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys without defaults are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{"database.url", "auth.jwt_secret"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.issuer", "tasklist-api")
	v.SetDefault("auth.audience", "tasklist-client")
	v.SetDefault("auth.token_lifetime_minutes", 120)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.lockout_threshold", 5)
	v.SetDefault("auth.lockout_minutes", 5)
	v.SetDefault("auth.failure_window_minutes", 15)
	v.SetDefault("auth.password_min_length", 6)
	v.SetDefault("auth.password_require_digit", false)
	v.SetDefault("auth.password_require_lower", false)
	v.SetDefault("auth.password_require_upper", false)
	v.SetDefault("auth.password_require_symbol", false)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})
}
