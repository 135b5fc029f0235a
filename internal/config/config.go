package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const minSessionSecretBytes = 32

// DBConfig holds database connection settings
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type ServerConfig struct {
	Port              string
	Env               string
	AllowedOrigin     string
	ShutdownTimeout   time.Duration
	ReadHeaderTimeout time.Duration
}

// SessionConfig controls cookie sessions.
// TTL is an inactivity timeout: every authenticated request extends it.
type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	SweepInterval time.Duration
	CookieSecure  bool
}

type UploadConfig struct {
	BasePath            string
	MaxImageUploadBytes int64
	MaxParallelUploads  int
}

// AdminSeed describes the account created on startup when missing.
// An empty password disables seeding.
type AdminSeed struct {
	FullName string
	Username string
	Mobile   string
	Password string
}

type LogConfig struct {
	Level string
}

type MonitoringConfig struct {
	APIKey string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Session     SessionConfig
	Upload      UploadConfig
	Admin       AdminSeed
	Log         LogConfig
	Monitoring  MonitoringConfig
}

// Load reads configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded, using process environment")
	}

	cfg := &Config{
		ServiceName: "genzfits-api",
		DB: DBConfig{
			Host:            getEnvOrDefault("DB_HOST", "localhost"),
			Port:            getEnvOrDefault("DB_PORT", "5432"),
			User:            getEnvOrDefault("DB_USER", "postgres"),
			Password:        getEnvOrDefault("DB_PASSWORD", "password"),
			Name:            getEnvOrDefault("DB_NAME", "genzfits"),
			SSLMode:         getEnvOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns:    getIntEnvOrDefault("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnvOrDefault("DB_MAX_IDLE_CONNS", 25),
			ConnMaxIdleTime: time.Duration(getIntEnvOrDefault("DB_CONN_MAX_IDLE_MINUTES", 5)) * time.Minute,
			ConnMaxLifetime: time.Duration(getIntEnvOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)) * time.Minute,
		},
		Server: ServerConfig{
			Port:              getEnvOrDefault("SERVER_PORT", "8085"),
			Env:               getEnvOrDefault("APP_ENV", "development"),
			AllowedOrigin:     getEnvOrDefault("CORS_ALLOWED_ORIGIN", "http://localhost:5173"),
			ShutdownTimeout:   getDurationEnvOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			ReadHeaderTimeout: getDurationEnvOrDefault("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			Secret:        strings.TrimSpace(os.Getenv("SESSION_SECRET")),
			TTL:           getDurationEnvOrDefault("SESSION_TTL", 10*time.Minute),
			SweepInterval: getDurationEnvOrDefault("SESSION_SWEEP_INTERVAL", time.Minute),
			CookieSecure:  getBoolEnvOrDefault("COOKIE_SECURE", false),
		},
		Upload: UploadConfig{
			BasePath:            getEnvOrDefault("UPLOADS_PATH", "./uploads"),
			MaxImageUploadBytes: int64(getIntEnvOrDefault("MAX_IMAGE_UPLOAD_BYTES", 5*1024*1024)),
			MaxParallelUploads:  getIntEnvOrDefault("MAX_PARALLEL_UPLOADS", 4),
		},
		Admin: AdminSeed{
			FullName: getEnvOrDefault("ADMIN_FULL_NAME", "Administrator"),
			Username: getEnvOrDefault("ADMIN_USERNAME", "admin"),
			Mobile:   getEnvOrDefault("ADMIN_MOBILE", "0000000000"),
			Password: strings.TrimSpace(os.Getenv("ADMIN_PASSWORD")),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "info"),
		},
		Monitoring: MonitoringConfig{
			APIKey: strings.TrimSpace(os.Getenv("MONITORING_API_KEY")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(c.Session.Secret) < minSessionSecretBytes {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretBytes)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Upload.MaxImageUploadBytes <= 0 {
		return errors.New("MAX_IMAGE_UPLOAD_BYTES must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogFields returns the non-secret part of the configuration for startup logs
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.Name),
		zap.String("allowed_origin", c.Server.AllowedOrigin),
		zap.Duration("session_ttl", c.Session.TTL),
		zap.String("uploads_path", c.Upload.BasePath),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Printf("Invalid %s=%q, using default %d", key, raw, defaultValue)
		return defaultValue
	}

	return value
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		log.Printf("Invalid %s=%q, using default %s", key, raw, defaultValue)
		return defaultValue
	}

	return value
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("Invalid %s=%q, using default %t", key, raw, defaultValue)
		return defaultValue
	}

	return value
}
