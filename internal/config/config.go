package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config aggregates runtime configuration for the console client.
type Config struct {
	App        AppConfig
	API        APIConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Logger     LoggerConfig
	Navigation NavigationConfig
	Notify     NotifyConfig
	DevServer  DevServerConfig
}

// AppConfig controls client level behavior.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig describes how the backend is reached.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	AdminNamespace        string
}

// StorageConfig selects where the credential is persisted.
type StorageConfig struct {
	Driver   string
	FilePath string
	Key      string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level    string
	Encoding string
}

// NavigationConfig names the entry points the guard redirects to.
type NavigationConfig struct {
	LoginPath   string
	LandingPath string
}

// NotifyConfig sizes the notification queue drained by the presentation layer.
type NotifyConfig struct {
	QueueSize int
}

// DevServerConfig configures the local development backend served by cmd/api.
type DevServerConfig struct {
	Port                  string
	JWTSecret             string
	TokenTTLMinutes       int
	BcryptCost            int
	SiteName              string
	SiteDescription       string
	CurrencySymbol        string
	AllowPasswordRegister bool
	AdminUsername         string
	AdminEmail            string
	AdminPassword         string
}

// Addr returns the listen address.
func (d DevServerConfig) Addr() string {
	return ":" + d.Port
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STORAGE_DRIVER", StorageFile))
	switch driver {
	case StorageFile, StorageRedis, StoragePostgres, StorageMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", driver)
	}

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "domain-console"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("API_TIMEOUT_SECONDS", 10),
			AdminNamespace:        getEnv("API_ADMIN_NAMESPACE", "/admin/"),
		},
		Storage: StorageConfig{
			Driver:   driver,
			FilePath: getEnv("STORAGE_FILE", defaultCredentialFile()),
			Key:      getEnv("STORAGE_KEY", "token"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 0)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Navigation: NavigationConfig{
			LoginPath:   getEnv("NAV_LOGIN_PATH", "/login"),
			LandingPath: getEnv("NAV_LANDING_PATH", "/dashboard"),
		},
		Notify: NotifyConfig{
			QueueSize: getEnvAsInt("NOTIFY_QUEUE_SIZE", 64),
		},
		DevServer: DevServerConfig{
			Port:                  getEnv("DEV_SERVER_PORT", "8080"),
			JWTSecret:             getEnv("DEV_SERVER_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes:       getEnvAsInt("DEV_SERVER_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("DEV_SERVER_BCRYPT_COST", 10),
			SiteName:              getEnv("DEV_SERVER_SITE_NAME", "Domain Console"),
			SiteDescription:       os.Getenv("DEV_SERVER_SITE_DESCRIPTION"),
			CurrencySymbol:        os.Getenv("DEV_SERVER_CURRENCY_SYMBOL"),
			AllowPasswordRegister: getEnvAsBool("DEV_SERVER_ALLOW_PASSWORD_REGISTER", true),
			AdminUsername:         getEnv("DEV_SERVER_ADMIN_USERNAME", "admin"),
			AdminEmail:            os.Getenv("DEV_SERVER_ADMIN_EMAIL"),
			AdminPassword:         os.Getenv("DEV_SERVER_ADMIN_PASSWORD"),
		},
	}

	return cfg, nil
}

// RequestTimeout returns the per-request network deadline.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".console-token"
	}
	return dir + string(os.PathSeparator) + "domain-console" + string(os.PathSeparator) + "token"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
