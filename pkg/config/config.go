package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Tick      TickConfig      `mapstructure:"tick"`
	Query     QueryConfig     `mapstructure:"query"`
	Host      HostConfig      `mapstructure:"host"`
	Events    EventsConfig    `mapstructure:"events"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	OTel      OTelConfig      `mapstructure:"otel"`
	Log       LogConfig       `mapstructure:"log"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // development, staging, production
	Debug       bool   `mapstructure:"debug"`
	Version     string `mapstructure:"version"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns host:port for http.Server
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// TickConfig holds the countdown ticker settings
type TickConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// QueryConfig holds the browse defaults
type QueryConfig struct {
	DefaultCity     string  `mapstructure:"default_city"`
	DefaultRadius   float64 `mapstructure:"default_radius"`
	DefaultDuration int     `mapstructure:"default_duration"`
	DefaultSort     string  `mapstructure:"default_sort"`
}

// HostConfig holds the embedding platform settings
type HostConfig struct {
	Platform     string `mapstructure:"platform"` // none, telegram
	TextColor    string `mapstructure:"text_color"`
	ShareBaseURL string `mapstructure:"share_base_url"`
}

// EventsConfig selects where lifecycle events go
type EventsConfig struct {
	Backend        string        `mapstructure:"backend"` // none, redis, kafka
	Topic          string        `mapstructure:"topic"`
	BufferSize     int           `mapstructure:"buffer_size"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the Redis address
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// KafkaConfig holds Kafka/Redpanda connection settings
type KafkaConfig struct {
	Brokers  []string `mapstructure:"brokers"`
	ClientID string   `mapstructure:"client_id"`
}

// RateLimitConfig holds the per-client limiter settings
type RateLimitConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Backend           string `mapstructure:"backend"` // local, redis
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
	Burst             int    `mapstructure:"burst"`
}

// CORSConfig holds allowed origins
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	ServiceName   string  `mapstructure:"service_name"`
	CollectorAddr string  `mapstructure:"collector_addr"`
	SampleRatio   float64 `mapstructure:"sample_ratio"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
	OutputPath  string `mapstructure:"output_path"`
}

// Load loads configuration from environment variables and an optional .env file
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// .env is optional, env vars may carry everything
	_ = v.ReadInConfig()

	return load(v)
}

// LoadWithPath loads configuration from a specific env file
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("APP_NAME", "tention")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_VERSION", "1.0.0")

	// Server
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")

	// Tick
	v.SetDefault("TICK_INTERVAL", "1s")

	// Query
	v.SetDefault("QUERY_DEFAULT_CITY", "SF")
	v.SetDefault("QUERY_DEFAULT_RADIUS", 5)
	v.SetDefault("QUERY_DEFAULT_DURATION", 10)
	v.SetDefault("QUERY_DEFAULT_SORT", "Ending Soon")

	// Host
	v.SetDefault("HOST_PLATFORM", "none")
	v.SetDefault("HOST_TEXT_COLOR", "#FFFFFF")
	v.SetDefault("HOST_SHARE_BASE_URL", "")

	// Events
	v.SetDefault("EVENTS_BACKEND", "none")
	v.SetDefault("EVENTS_TOPIC", "tention.slot-events")
	v.SetDefault("EVENTS_BUFFER_SIZE", 1000)
	v.SetDefault("EVENTS_PUBLISH_TIMEOUT", "2s")

	// Redis
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	// Kafka
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_CLIENT_ID", "tention")

	// Rate limit
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_BACKEND", "local")
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)

	// CORS
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	// OTel
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "tention")
	v.SetDefault("OTEL_COLLECTOR_ADDR", "localhost:4317")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)

	// Log
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DEVELOPMENT", false)
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	// App
	cfg.App.Name = v.GetString("APP_NAME")
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.App.Debug = v.GetBool("APP_DEBUG")
	cfg.App.Version = v.GetString("APP_VERSION")

	// Server
	cfg.Server.Host = v.GetString("SERVER_HOST")
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.ReadTimeout = v.GetDuration("SERVER_READ_TIMEOUT")
	cfg.Server.WriteTimeout = v.GetDuration("SERVER_WRITE_TIMEOUT")
	cfg.Server.IdleTimeout = v.GetDuration("SERVER_IDLE_TIMEOUT")
	cfg.Server.ShutdownTimeout = v.GetDuration("SERVER_SHUTDOWN_TIMEOUT")

	// Tick
	cfg.Tick.Interval = v.GetDuration("TICK_INTERVAL")

	// Query
	cfg.Query.DefaultCity = strings.ToUpper(v.GetString("QUERY_DEFAULT_CITY"))
	cfg.Query.DefaultRadius = v.GetFloat64("QUERY_DEFAULT_RADIUS")
	cfg.Query.DefaultDuration = v.GetInt("QUERY_DEFAULT_DURATION")
	cfg.Query.DefaultSort = v.GetString("QUERY_DEFAULT_SORT")

	// Host
	cfg.Host.Platform = strings.ToLower(v.GetString("HOST_PLATFORM"))
	cfg.Host.TextColor = v.GetString("HOST_TEXT_COLOR")
	cfg.Host.ShareBaseURL = v.GetString("HOST_SHARE_BASE_URL")

	// Events
	cfg.Events.Backend = strings.ToLower(v.GetString("EVENTS_BACKEND"))
	cfg.Events.Topic = v.GetString("EVENTS_TOPIC")
	cfg.Events.BufferSize = v.GetInt("EVENTS_BUFFER_SIZE")
	cfg.Events.PublishTimeout = v.GetDuration("EVENTS_PUBLISH_TIMEOUT")

	// Redis
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetInt("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	cfg.Redis.DialTimeout = v.GetDuration("REDIS_DIAL_TIMEOUT")
	cfg.Redis.ReadTimeout = v.GetDuration("REDIS_READ_TIMEOUT")
	cfg.Redis.WriteTimeout = v.GetDuration("REDIS_WRITE_TIMEOUT")

	// Kafka
	cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	cfg.Kafka.ClientID = v.GetString("KAFKA_CLIENT_ID")

	// Rate limit
	cfg.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	cfg.RateLimit.Backend = strings.ToLower(v.GetString("RATE_LIMIT_BACKEND"))
	cfg.RateLimit.RequestsPerSecond = v.GetInt("RATE_LIMIT_REQUESTS_PER_SECOND")
	cfg.RateLimit.Burst = v.GetInt("RATE_LIMIT_BURST")

	// CORS
	cfg.CORS.AllowOrigins = splitList(v.GetString("CORS_ALLOW_ORIGINS"))

	// OTel
	cfg.OTel.Enabled = v.GetBool("OTEL_ENABLED")
	cfg.OTel.ServiceName = v.GetString("OTEL_SERVICE_NAME")
	cfg.OTel.CollectorAddr = v.GetString("OTEL_COLLECTOR_ADDR")
	cfg.OTel.SampleRatio = v.GetFloat64("OTEL_SAMPLE_RATIO")

	// Log
	cfg.Log.Level = strings.ToLower(v.GetString("LOG_LEVEL"))
	cfg.Log.Development = v.GetBool("LOG_DEVELOPMENT")
	cfg.Log.OutputPath = v.GetString("LOG_OUTPUT_PATH")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Tick.Interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.Tick.Interval)
	}

	switch c.Host.Platform {
	case "none", "telegram":
	default:
		return fmt.Errorf("unknown host platform: %q", c.Host.Platform)
	}

	switch c.Events.Backend {
	case "none":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("redis host is required for the redis events backend")
		}
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka brokers are required for the kafka events backend")
		}
	default:
		return fmt.Errorf("unknown events backend: %q", c.Events.Backend)
	}

	if c.Events.Backend != "none" && c.Events.Topic == "" {
		return fmt.Errorf("events topic is required")
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit requests per second and burst must be positive")
		}
		switch c.RateLimit.Backend {
		case "local", "redis":
		default:
			return fmt.Errorf("unknown rate limit backend: %q", c.RateLimit.Backend)
		}
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
