package config

import (
	"fmt"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	JWT       JWTConfig
	Admission AdmissionConfig
	RateLimit RateLimitConfig
	Abuse     AbuseConfig
	Worker    WorkerConfig
	Log       LogConfig
	Sentry    SentryConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// Addr returns the server listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpiryHours int           `mapstructure:"expiry_hours"`
	Expiry      time.Duration `mapstructure:"-"`
	Issuer      string        `mapstructure:"issuer"`
	CookieName  string        `mapstructure:"cookie_name"`
}

// AdmissionConfig holds request admission configuration
type AdmissionConfig struct {
	Enabled        bool  `mapstructure:"enabled"`
	MaxConcurrent  int64 `mapstructure:"max_concurrent"`
	MaxPayloadSize int64 `mapstructure:"max_payload_size"`
}

// RateLimitClass holds the fixed-window parameters for one endpoint class
type RateLimitClass struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

// RateLimitConfig holds per-class rate limiting configuration
type RateLimitConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Default RateLimitClass `mapstructure:"default"`
	Auth    RateLimitClass `mapstructure:"auth"`
	Images  RateLimitClass `mapstructure:"images"`
}

// AbuseConfig holds abuse guard configuration
type AbuseConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BurstThreshold int           `mapstructure:"burst_threshold"`
	BlockDuration  time.Duration `mapstructure:"block_duration"`
}

// WorkerConfig holds background worker configuration
type WorkerConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	QueueCritical string `mapstructure:"queue_critical"`
	QueueDefault  string `mapstructure:"queue_default"`
	QueueLow      string `mapstructure:"queue_low"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SentryConfig holds crash reporting configuration
type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// IsDevelopment returns true if running in development mode
func (c Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c Config) IsProduction() bool {
	return c.Server.Env == "production"
}
