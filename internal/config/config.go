package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"  validate:"required"`
	Relay    RelayConfig    `mapstructure:"relay"    validate:"required"`
	Jobs     JobsConfig     `mapstructure:"jobs"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// AllowedOrigins lists the CORS origins accepted by the API and the relay.
	// A single "*" accepts any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1"`

	// StaticDir optionally points at a built client bundle to serve at "/".
	StaticDir string `mapstructure:"static_dir"`

	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url"                       validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"            validate:"gt=0"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"            validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gt=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`

	// LoginRateLimit is the number of login attempts allowed per client IP
	// within LoginRateWindowMinutes.
	LoginRateLimit         int `mapstructure:"login_rate_limit"          validate:"gt=0"`
	LoginRateWindowMinutes int `mapstructure:"login_rate_window_minutes" validate:"gt=0"`
}

// StorageConfig selects where attachment bytes live.
type StorageConfig struct {
	Backend        string `mapstructure:"backend"          validate:"required,oneof=disk gcs"`
	Dir            string `mapstructure:"dir"              validate:"required_if=Backend disk"`
	GCSBucket      string `mapstructure:"gcs_bucket"       validate:"required_if=Backend gcs"`
	GCSPrefix      string `mapstructure:"gcs_prefix"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes" validate:"gt=0"`

	// GCSCredentialsFile is a service account key. When empty the client
	// falls back to application default credentials.
	GCSCredentialsFile string `mapstructure:"gcs_credentials_file" validate:"omitempty,file"`
}

// RelayConfig configures the real-time relay.
type RelayConfig struct {
	// RedisURL enables cross-instance fan-out when set (redis://host:port/db).
	RedisURL            string `mapstructure:"redis_url"             validate:"omitempty,url"`
	Channel             string `mapstructure:"channel"               validate:"required"`
	SendBuffer          int    `mapstructure:"send_buffer"           validate:"gt=0"`
	PingIntervalSeconds int    `mapstructure:"ping_interval_seconds" validate:"gt=0"`
	MaxMessageBytes     int64  `mapstructure:"max_message_bytes"     validate:"gt=0"`
}

// JobsConfig sizes the background worker pool.
type JobsConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"gt=0"`
}
