package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	OTLPEndpoint  string
	Observability ObservabilityConfig

	Store     StoreConfig
	Redis     RedisConfig
	Numbering NumberingConfig
	Auth      AuthConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// ObservabilityConfig carries the raw logging and OpenTelemetry settings.
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string
	OtelEnabled    bool
	OtelProtocol   string
	OtelSampling   float64
	DeploymentEnv  string
	ServiceVersion string
}

// StoreConfig selects the key-value backend and its namespace.
type StoreConfig struct {
	Backend   string
	Namespace string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NumberingConfig controls document number formatting.
type NumberingConfig struct {
	Template string
	TimeZone string
}

// AuthConfig carries bcrypt hashes of the API keys per role.
// Empty hashes disable authentication (development only).
type AuthConfig struct {
	AdminKeyHash string
	ClerkKeyHash string
}

const (
	StoreBackendMemory = "memory"
	StoreBackendSQL    = "sql"
	StoreBackendRedis  = "redis"

	DefaultNamespace = "r2r_v1"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:      getenv("APP_SERVICE", "docflow"),
		AppVersion:   getenv("APP_VERSION", "0.1.0"),
		Environment:  getenv("ENVIRONMENT", "development"),
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		OTLPEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317")),
		Observability: ObservabilityConfig{
			LogLevel:       getenv("LOG_LEVEL", "info"),
			LogFormat:      getenv("LOG_FORMAT", "json"),
			OtelEnabled:    getenvBool("OTEL_ENABLED", false),
			OtelProtocol:   getenv("OTEL_EXPORTER_OTLP_TRACES_PROTOCOL", getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			OtelSampling:   getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
			DeploymentEnv:  getenv("DEPLOYMENT_ENV", ""),
			ServiceVersion: getenv("SERVICE_VERSION", ""),
		},
		Store: StoreConfig{
			Backend:   normalizeBackend(getenv("STORE_BACKEND", StoreBackendMemory)),
			Namespace: strings.TrimSpace(getenv("STORE_NAMESPACE", DefaultNamespace)),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", "localhost:6379"),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getenvInt("REDIS_DB", 0),
		},
		Numbering: NumberingConfig{
			Template: strings.TrimSpace(getenv("NUMBERING_TEMPLATE", "")),
			TimeZone: strings.TrimSpace(getenv("NUMBERING_TIMEZONE", "")),
		},
		Auth: AuthConfig{
			AdminKeyHash: strings.TrimSpace(getenv("AUTH_ADMIN_KEY_HASH", "")),
			ClerkKeyHash: strings.TrimSpace(getenv("AUTH_CLERK_KEY_HASH", "")),
		},
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "docflow"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBPath:            getenv("DATABASE_PATH", "docflow.db"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),
	}

	if cfg.Store.Namespace == "" {
		cfg.Store.Namespace = DefaultNamespace
	}

	return cfg
}

// IsProduction reports whether the service runs in production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// AuthEnabled reports whether at least one API key hash is configured.
func (c Config) AuthEnabled() bool {
	return c.Auth.AdminKeyHash != "" || c.Auth.ClerkKeyHash != ""
}

func normalizeBackend(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case StoreBackendSQL, "postgres", "mysql", "sqlite":
		return StoreBackendSQL
	case StoreBackendRedis:
		return StoreBackendRedis
	default:
		return StoreBackendMemory
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
