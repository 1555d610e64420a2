package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	CORSOrigin      string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver             string
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	ConnectRetries     int
	RetryBackoff       time.Duration
	RunMigrations      bool
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	JWTIssuer  string
	BCryptCost int
}

// CacheConfig holds leaderboard cache configuration
type CacheConfig struct {
	Provider       string // "memory", "redis"
	RedisURL       string
	PoolSize       int
	LeaderboardTTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	Format     string // "json", "console"
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Load reads configuration from the environment. Outside production an
// .env.<GO_ENV> file (or .env) is loaded first.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	config := &Config{
		Server:   loadServerConfig(env),
		Database: loadDatabaseConfig(env),
		Auth:     loadAuthConfig(env),
		Cache:    loadCacheConfig(),
		Logging:  loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	return ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
		GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		CORSOrigin:      getEnv("CORS_ORIGIN", "*"),
	}
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		Driver:             strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		ConnectRetries:     getIntEnv("DB_CONNECT_RETRIES", 5),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", time.Second),
		RunMigrations:      getBoolEnv("DB_RUN_MIGRATIONS", true),
	}

	if env == "production" {
		if config.MaxOpenConns < 25 {
			config.MaxOpenConns = 25
		}
		if !strings.Contains(config.URL, "sslmode=") && config.URL != "" {
			config.URL = appendQueryParam(config.URL, "sslmode", "require")
		}
	}

	if config.MaxIdleConns > config.MaxOpenConns {
		config.MaxIdleConns = config.MaxOpenConns
	}

	return config
}

func loadAuthConfig(env string) AuthConfig {
	secret := getEnv("JWT_SECRET", "")
	if secret == "" && env != "production" {
		secret = "development-jwt-secret-change-me"
	}
	return AuthConfig{
		JWTSecret:  secret,
		JWTExpiry:  getDurationEnv("JWT_EXPIRY", 168*time.Hour),
		JWTIssuer:  getEnv("JWT_ISSUER", "ecotrace"),
		BCryptCost: getIntEnv("BCRYPT_COST", 12),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:       strings.ToLower(getEnv("CACHE_PROVIDER", "memory")),
		RedisURL:       getEnv("REDIS_URL", ""),
		PoolSize:       getIntEnv("REDIS_POOL_SIZE", 10),
		LeaderboardTTL: getDurationEnv("LEADERBOARD_CACHE_TTL", time.Minute),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	format := "console"
	if env == "production" {
		format = "json"
	}
	return LoggingConfig{
		Level:      getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format:     getEnv("LOG_FORMAT", format),
		FilePath:   getEnv("LOG_FILE", ""),
		MaxSize:    getIntEnv("LOG_MAX_SIZE", 50),
		MaxBackups: getIntEnv("LOG_MAX_BACKUPS", 7),
		MaxAge:     getIntEnv("LOG_MAX_AGE", 14),
		Compress:   getBoolEnv("LOG_COMPRESS", true),
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate checks every section and returns the first failure.
func (c *Config) Validate() error {
	validators := []func() error{
		c.Server.Validate,
		c.Database.Validate,
		c.Auth.Validate,
		c.Cache.Validate,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}

	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	port, err := strconv.Atoi(s.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", s.Port)
	}
	return nil
}

// Validate validates database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case StoragePostgres:
		if d.URL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", d.Driver)
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive")
	}
	if d.ConnectRetries < 0 {
		return fmt.Errorf("DB_CONNECT_RETRIES cannot be negative")
	}
	return nil
}

// Validate validates auth configuration
func (a *AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY must be positive")
	}
	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory", "":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
		}
	default:
		return fmt.Errorf("unsupported CACHE_PROVIDER %q", c.Provider)
	}
	return nil
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr is the listen address for the HTTP server.
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ===============================
// HELPERS
// ===============================

func appendQueryParam(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + key + "=" + value
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	case "test":
		return "warn"
	default:
		return "debug"
	}
}
