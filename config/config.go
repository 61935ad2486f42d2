package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration. DatabaseURL takes precedence over the
	// individual DB_* fields when set.
	DatabaseURL string
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	DBPath      string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// AllowAdminSignup permits role=admin on self-registration.
	AllowAdminSignup bool

	// Image storage
	StorageDriver  string
	UploadDir      string
	MaxUploadBytes int64

	CORSOrigins []string
	LogLevel    string
}

const (
	defaultServerPort     = "3000"
	defaultTokenTTL       = 24 * time.Hour
	defaultUploadDir      = "uploads"
	defaultMaxUploadBytes = 5 << 20
	defaultCORSOrigin     = "http://localhost:3000"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win over its values.
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := applyCommon(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI environment from environment variables only
func loadCIConfig(cfg *Config) error {
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = os.Getenv("DB_SSL_MODE")
	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = os.Getenv("REDIS_PORT")

	cfg.DBPassword = firstNonEmpty(os.Getenv("TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	cfg.JWTSecret = firstNonEmpty(os.Getenv("TEST_JWT_SECRET"), os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return fmt.Errorf("TEST_JWT_SECRET or JWT_SECRET environment variable is required in CI environment")
	}
	cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), os.Getenv("REDIS_PASSWORD"))
	return nil
}

// loadDevConfig reads environment variables first and falls back to Docker secrets
func loadDevConfig(cfg *Config) {
	cfg.DatabaseURL = lookup("DATABASE_URL", "database_url")
	cfg.DBHost = lookup("DB_HOST", "db_host")
	cfg.DBPort = lookup("DB_PORT", "db_port")
	cfg.DBUser = lookup("DB_USER", "db_user")
	cfg.DBPassword = lookup("DB_PASSWORD", "db_password")
	cfg.DBName = lookup("DB_NAME", "db_name")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode")
	cfg.RedisURL = lookup("REDIS_URL", "redis_url")
	cfg.RedisHost = lookup("REDIS_HOST", "redis_host")
	cfg.RedisPort = lookup("REDIS_PORT", "redis_port")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "redis_password")
	cfg.JWTSecret = lookup("JWT_SECRET", "jwt_secret")
}

// loadProdConfig loads credentials from Docker secrets only
func loadProdConfig(cfg *Config) {
	cfg.DatabaseURL = readSecret("database_url")
	cfg.DBHost = firstNonEmpty(readSecret("db_host"), os.Getenv("DB_HOST"))
	cfg.DBPort = firstNonEmpty(readSecret("db_port"), os.Getenv("DB_PORT"))
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = firstNonEmpty(readSecret("db_name"), os.Getenv("DB_NAME"))
	cfg.DBSSLMode = firstNonEmpty(readSecret("db_ssl_mode"), os.Getenv("DB_SSL_MODE"))
	cfg.RedisURL = readSecret("redis_url")
	cfg.RedisHost = firstNonEmpty(readSecret("redis_host"), os.Getenv("REDIS_HOST"))
	cfg.RedisPort = firstNonEmpty(readSecret("redis_port"), os.Getenv("REDIS_PORT"))
	cfg.RedisPassword = readSecret("redis_password")
	cfg.JWTSecret = readSecret("jwt_secret")
}

// applyCommon fills the non-sensitive settings shared by every environment
func applyCommon(cfg *Config) error {
	cfg.ServerHost = os.Getenv("SERVER_HOST")
	cfg.ServerPort = firstNonEmpty(os.Getenv("SERVER_PORT"), os.Getenv("PORT"), defaultServerPort)
	cfg.DBDriver = firstNonEmpty(strings.ToLower(os.Getenv("DB_DRIVER")), "postgres")
	cfg.DBPath = os.Getenv("DB_PATH")
	cfg.StorageDriver = firstNonEmpty(strings.ToLower(os.Getenv("STORAGE_DRIVER")), "local")
	cfg.UploadDir = firstNonEmpty(os.Getenv("UPLOAD_DIR"), defaultUploadDir)
	cfg.LogLevel = firstNonEmpty(strings.ToLower(os.Getenv("LOG_LEVEL")), "info")

	origins := firstNonEmpty(os.Getenv("CORS_ORIGINS"), defaultCORSOrigin)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	cfg.TokenTTL = defaultTokenTTL
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return ValidationError{Field: "TOKEN_TTL", Message: err.Error()}
		}
		cfg.TokenTTL = ttl
	}

	cfg.AllowAdminSignup = true
	if v := os.Getenv("ALLOW_ADMIN_SIGNUP"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return ValidationError{Field: "ALLOW_ADMIN_SIGNUP", Message: err.Error()}
		}
		cfg.AllowAdminSignup = allow
	}

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return ValidationError{Field: "MAX_UPLOAD_BYTES", Message: err.Error()}
		}
		cfg.MaxUploadBytes = n
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return ValidationError{Field: "REDIS_DB", Message: err.Error()}
		}
		cfg.RedisDB = n
	}

	return nil
}

// DSN returns the connection string for the configured database driver.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	if c.DBDriver == "sqlite" {
		return c.DBPath
	}
	sslMode := firstNonEmpty(c.DBSSLMode, "disable")
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// Addr returns the host:port the HTTP server listens on.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis endpoint has been configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// lookup returns the environment variable or, failing that, the Docker secret
func lookup(envVar, secret string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return readSecret(secret)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
