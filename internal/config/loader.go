package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from environment variables
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Optionally read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fanfie")

	// Ignore error if config file not found
	_ = v.ReadInConfig()

	var cfg Config

	// Server
	cfg.Server.Host = v.GetString("server_host")
	cfg.Server.Port = v.GetInt("server_port")
	cfg.Server.Env = v.GetString("server_env")

	// PostgreSQL
	cfg.Postgres.Host = v.GetString("postgres_host")
	cfg.Postgres.Port = v.GetInt("postgres_port")
	cfg.Postgres.User = v.GetString("postgres_user")
	cfg.Postgres.Password = v.GetString("postgres_password")
	cfg.Postgres.Database = v.GetString("postgres_db")
	cfg.Postgres.SSLMode = v.GetString("postgres_ssl_mode")
	cfg.Postgres.MaxConns = int32(v.GetInt("postgres_max_conns"))
	cfg.Postgres.MinConns = int32(v.GetInt("postgres_min_conns"))

	// Redis
	cfg.Redis.Host = v.GetString("redis_host")
	cfg.Redis.Port = v.GetInt("redis_port")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.Redis.DB = v.GetInt("redis_db")

	// MinIO
	cfg.MinIO.Endpoint = v.GetString("minio_endpoint")
	cfg.MinIO.AccessKey = v.GetString("minio_access_key")
	cfg.MinIO.SecretKey = v.GetString("minio_secret_key")
	cfg.MinIO.UseSSL = v.GetBool("minio_use_ssl")
	cfg.MinIO.Bucket = v.GetString("minio_bucket")

	// JWT
	cfg.JWT.Secret = v.GetString("jwt_secret")
	cfg.JWT.ExpiryHours = v.GetInt("jwt_expiry_hours")
	cfg.JWT.Expiry = time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	cfg.JWT.Issuer = v.GetString("jwt_issuer")
	cfg.JWT.CookieName = v.GetString("jwt_cookie_name")

	// Admission
	cfg.Admission.Enabled = v.GetBool("admission_enabled")
	cfg.Admission.MaxConcurrent = v.GetInt64("admission_max_concurrent")
	cfg.Admission.MaxPayloadSize = v.GetInt64("admission_max_payload_size")

	// Rate limiting
	cfg.RateLimit.Enabled = v.GetBool("rate_limit_enabled")
	cfg.RateLimit.Default.MaxRequests = v.GetInt("rate_limit_default_max_requests")
	cfg.RateLimit.Default.Window = v.GetDuration("rate_limit_default_window")
	cfg.RateLimit.Auth.MaxRequests = v.GetInt("rate_limit_auth_max_requests")
	cfg.RateLimit.Auth.Window = v.GetDuration("rate_limit_auth_window")
	cfg.RateLimit.Images.MaxRequests = v.GetInt("rate_limit_images_max_requests")
	cfg.RateLimit.Images.Window = v.GetDuration("rate_limit_images_window")

	// Abuse guard
	cfg.Abuse.Enabled = v.GetBool("abuse_enabled")
	cfg.Abuse.BurstThreshold = v.GetInt("abuse_burst_threshold")
	cfg.Abuse.BlockDuration = v.GetDuration("abuse_block_duration")

	// Worker
	cfg.Worker.Concurrency = v.GetInt("worker_concurrency")
	cfg.Worker.QueueCritical = v.GetString("worker_queue_critical")
	cfg.Worker.QueueDefault = v.GetString("worker_queue_default")
	cfg.Worker.QueueLow = v.GetString("worker_queue_low")

	// Logging
	cfg.Log.Level = v.GetString("log_level")
	cfg.Log.Format = v.GetString("log_format")

	// Sentry
	cfg.Sentry.DSN = v.GetString("sentry_dsn")

	// CORS
	cfg.CORS.AllowedOrigins = v.GetStringSlice("cors_allowed_origins")

	// Validate required fields
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", 8080)
	v.SetDefault("server_env", "development")

	// PostgreSQL defaults
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "fanfie")
	v.SetDefault("postgres_password", "fanfie")
	v.SetDefault("postgres_db", "fanfie")
	v.SetDefault("postgres_ssl_mode", "disable")
	v.SetDefault("postgres_max_conns", 25)
	v.SetDefault("postgres_min_conns", 5)

	// Redis defaults
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", 6379)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// MinIO defaults
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "fanfie")
	v.SetDefault("minio_secret_key", "fanfie123")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("minio_bucket", "fanfie-images")

	// JWT defaults
	v.SetDefault("jwt_secret", "change-me-in-production")
	v.SetDefault("jwt_expiry_hours", 24)
	v.SetDefault("jwt_issuer", "fanfie-api")
	v.SetDefault("jwt_cookie_name", "fanfie_session")

	// Admission defaults
	v.SetDefault("admission_enabled", true)
	v.SetDefault("admission_max_concurrent", 50)
	v.SetDefault("admission_max_payload_size", 10*1024*1024)

	// Rate limiting defaults
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_default_max_requests", 60)
	v.SetDefault("rate_limit_default_window", "60s")
	v.SetDefault("rate_limit_auth_max_requests", 30)
	v.SetDefault("rate_limit_auth_window", "900s")
	v.SetDefault("rate_limit_images_max_requests", 100)
	v.SetDefault("rate_limit_images_window", "60s")

	// Abuse guard defaults
	v.SetDefault("abuse_enabled", true)
	v.SetDefault("abuse_burst_threshold", 10)
	v.SetDefault("abuse_block_duration", "1h")

	// Worker defaults
	v.SetDefault("worker_concurrency", 10)
	v.SetDefault("worker_queue_critical", "critical")
	v.SetDefault("worker_queue_default", "default")
	v.SetDefault("worker_queue_low", "low")

	// Logging defaults
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Sentry defaults
	v.SetDefault("sentry_dsn", "")

	// CORS defaults
	v.SetDefault("cors_allowed_origins", []string{"*"})
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "change-me-in-production" && cfg.IsProduction() {
		return fmt.Errorf("JWT secret must be changed in production")
	}
	if cfg.Admission.MaxConcurrent <= 0 {
		return fmt.Errorf("admission max_concurrent must be positive")
	}
	if cfg.RateLimit.Default.MaxRequests <= 0 || cfg.RateLimit.Default.Window <= 0 {
		return fmt.Errorf("default rate limit class must have positive limit and window")
	}
	return nil
}
