package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// DefaultUploadMaxBytes is the per-document upload ceiling (5 MiB).
const DefaultUploadMaxBytes int64 = 5 << 20

// Config is the full service configuration. Empty DatabaseURL selects the
// in-memory stores and empty S3Bucket selects the in-memory blob store, so the
// server runs with no external dependencies in development.
type Config struct {
	Env  string `mapstructure:"GARAGEHUB_ENV"`
	Addr string `mapstructure:"GARAGEHUB_ADDR"`

	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`

	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns  int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns  int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLife   time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`
	MigrateOnStart  bool          `mapstructure:"MIGRATE_ON_START"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	Redis RedisConfig `mapstructure:",squash"`
	S3    S3Config    `mapstructure:",squash"`
	Kafka KafkaConfig `mapstructure:",squash"`

	UploadMaxBytes int64 `mapstructure:"UPLOAD_MAX_BYTES"`
}

// RedisConfig configures the KYC record cache. Empty URL disables caching.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
	RecordTTL    time.Duration `mapstructure:"REDIS_RECORD_TTL"`
}

// S3Config configures document storage.
type S3Config struct {
	Region          string `mapstructure:"AWS_REGION"`
	AccessKeyID     string `mapstructure:"AWS_ACCESS_KEY"`
	SecretAccessKey string `mapstructure:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `mapstructure:"S3_ENDPOINT"`
	Bucket          string `mapstructure:"S3_BUCKET"`
	PublicBaseURL   string `mapstructure:"S3_PUBLIC_BASE_URL"`
}

// KafkaConfig configures the audit trail. No brokers selects the in-memory
// audit store.
type KafkaConfig struct {
	Brokers    []string `mapstructure:"KAFKA_BROKERS"`
	AuditTopic string   `mapstructure:"KAFKA_AUDIT_TOPIC"`
}

// Enabled reports whether a cache URL is configured.
func (c RedisConfig) Enabled() bool { return c.URL != "" }

// Enabled reports whether a bucket is configured.
func (c S3Config) Enabled() bool { return c.Bucket != "" }

// Enabled reports whether any broker is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

var defaults = map[string]any{
	"GARAGEHUB_ENV":         "development",
	"GARAGEHUB_ADDR":        ":8080",
	"JWT_SIGNING_KEY":       "",
	"JWT_ISSUER":            "garagehub",
	"DATABASE_URL":          "",
	"DB_MAX_OPEN_CONNS":     25,
	"DB_MAX_IDLE_CONNS":     5,
	"DB_CONN_MAX_LIFETIME":  30 * time.Minute,
	"MIGRATE_ON_START":      true,
	"REQUEST_TIMEOUT":       30 * time.Second,
	"SHUTDOWN_TIMEOUT":      10 * time.Second,
	"REDIS_URL":             "",
	"REDIS_POOL_SIZE":       10,
	"REDIS_MIN_IDLE_CONNS":  2,
	"REDIS_DIAL_TIMEOUT":    5 * time.Second,
	"REDIS_READ_TIMEOUT":    3 * time.Second,
	"REDIS_WRITE_TIMEOUT":   3 * time.Second,
	"REDIS_RECORD_TTL":      10 * time.Minute,
	"AWS_REGION":            "us-east-1",
	"AWS_ACCESS_KEY":        "",
	"AWS_SECRET_ACCESS_KEY": "",
	"S3_ENDPOINT":           "",
	"S3_BUCKET":             "",
	"S3_PUBLIC_BASE_URL":    "",
	"KAFKA_BROKERS":         []string{},
	"KAFKA_AUDIT_TOPIC":     "garagehub.kyc.audit",
	"UPLOAD_MAX_BYTES":      DefaultUploadMaxBytes,
}

// Load reads configuration from the environment, falling back to an optional
// .env file in path. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "."
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSigningKey == "" {
		if c.Env == "production" {
			return errors.New("JWT_SIGNING_KEY must be set in production")
		}
		// Use a default for development - should be overridden in production
		c.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if c.UploadMaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	if c.S3.Enabled() && c.S3.PublicBaseURL == "" {
		return errors.New("S3_PUBLIC_BASE_URL is required when S3_BUCKET is set")
	}
	return nil
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	c.JWTSigningKey = "****"
	c.S3.SecretAccessKey = "****"
	if c.DatabaseURL != "" {
		c.DatabaseURL = "****"
	}
	if c.Redis.URL != "" {
		c.Redis.URL = "****"
	}
	return c
}
