package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "TASKMASTER"

// ConfigFileEnv names the environment variable that may point at an explicit
// configuration file. When unset, Load looks for ./config.yaml.
const ConfigFileEnv = "TASKMASTER_CONFIG_FILE"

// envAliases lists additional, unprefixed variable names honoured for a key.
// They keep deployments that predate the prefix working.
var envAliases = map[string][]string{
	"server.port":     {"PORT"},
	"database.url":    {"DATABASE_URL"},
	"auth.jwt_secret": {"JWT_SECRET"},
	"relay.redis_url": {"REDIS_URL"},
}

// defaults holds every configuration key with its default value. A nil value
// marks a key with no default that must still be bound to the environment.
var defaults = map[string]any{
	"server.port":                         5000,
	"server.log_level":                    "info",
	"server.allowed_origins":              []string{"*"},
	"server.static_dir":                   "",
	"server.shutdown_timeout_seconds":     10,
	"database.url":                        nil,
	"database.max_open_conns":             10,
	"database.max_idle_conns":             5,
	"database.conn_max_lifetime_minutes":  5,
	"auth.jwt_secret":                     nil,
	"auth.token_lifetime_minutes":         24 * 60,
	"auth.refresh_token_lifetime_minutes": 7 * 24 * 60,
	"auth.bcrypt_cost":                    10,
	"auth.login_rate_limit":               5,
	"auth.login_rate_window_minutes":      15,
	"storage.backend":                     "disk",
	"storage.dir":                         "uploads",
	"storage.gcs_bucket":                  "",
	"storage.gcs_prefix":                  "",
	"storage.gcs_credentials_file":        "",
	"storage.max_upload_bytes":            10 << 20,
	"relay.redis_url":                     "",
	"relay.channel":                       "taskmaster:relay",
	"relay.send_buffer":                   64,
	"relay.ping_interval_seconds":         30,
	"relay.max_message_bytes":             64 << 10,
	"jobs.worker_count":                   2,
	"jobs.queue_size":                     100,
}

// Load configuration from defaults, an optional config file and environment
// variables. Environment variables take precedence over values from config
// files. Returns a populated Config struct or an error if loading/validation
// fails.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		if value != nil {
			v.SetDefault(key, value)
		}
		if err := v.BindEnv(append([]string{key, envName(key)}, envAliases[key]...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if path := os.Getenv(ConfigFileEnv); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envName converts a dotted key such as "auth.jwt_secret" into
// TASKMASTER_AUTH_JWT_SECRET.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
