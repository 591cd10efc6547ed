package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORE_DRIVER
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Biometric simulator modes accepted by BIOMETRIC_SIMULATOR
const (
	SimulatorApprove     = "approve"
	SimulatorDeny        = "deny"
	SimulatorUnavailable = "unavailable"
)

type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Biometric BiometricConfig
	UI        UIConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type StorageConfig struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
	Redis      RedisConfig
}

type PostgresConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxConnLifetime time.Duration
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

type AuthConfig struct {
	BcryptCost            int
	RegisterRedirectDelay time.Duration
	RegistrationPersist   bool
	TimingDelayBaseMs     int
	TimingDelayRandomMs   int
	AuthRequestsPerMinute int
}

type BiometricConfig struct {
	Simulator    string
	BiometryType string
	// SecureStoreKey is the hex encoded AES-256 key sealing secure items
	SecureStoreKey string
}

type UIConfig struct {
	// ThemeMode is the palette the shell starts with: light or dark
	ThemeMode string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("HOST", "127.0.0.1"),
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
			SQLitePath: getEnv("SQLITE_PATH", "lockbox.db"),
			Postgres: PostgresConfig{
				Host:            getEnv("DB_HOST", "localhost"),
				Port:            getEnvAsInt("DB_PORT", 5432),
				User:            getEnv("DB_USER", "postgres"),
				Password:        getEnv("DB_PASSWORD", ""),
				Name:            getEnv("DB_NAME", "lockbox"),
				SSLMode:         getEnv("DB_SSLMODE", "disable"),
				MaxOpenConns:    getEnvAsInt("DB_MAX_CONNS", 5),
				MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			},
			Redis: RedisConfig{
				Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
				Password:  getEnv("REDIS_PASSWORD", ""),
				DB:        getEnvAsInt("REDIS_DB", 0),
				KeyPrefix: getEnv("REDIS_KEY_PREFIX", "lockbox:"),
			},
		},
		Auth: AuthConfig{
			BcryptCost:            getEnvAsInt("BCRYPT_COST", 12),
			RegisterRedirectDelay: getEnvAsDuration("REGISTER_REDIRECT_DELAY", 1500*time.Millisecond),
			RegistrationPersist:   getEnvAsBool("REGISTRATION_PERSIST", false),
			TimingDelayBaseMs:     getEnvAsInt("TIMING_DELAY_BASE_MS", 150),
			TimingDelayRandomMs:   getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
			AuthRequestsPerMinute: getEnvAsInt("AUTH_REQUESTS_PER_MINUTE", 30),
		},
		Biometric: BiometricConfig{
			Simulator:      strings.ToLower(getEnv("BIOMETRIC_SIMULATOR", SimulatorApprove)),
			BiometryType:   getEnv("BIOMETRY_TYPE", "Biometrics"),
			SecureStoreKey: getEnv("SECURE_STORE_KEY", ""),
		},
		UI: UIConfig{
			ThemeMode: strings.ToLower(getEnv("THEME_MODE", "light")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverRedis:
	case DriverPostgres:
		if c.Storage.Postgres.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Biometric.Simulator {
	case SimulatorApprove, SimulatorDeny, SimulatorUnavailable:
	default:
		return fmt.Errorf("unknown BIOMETRIC_SIMULATOR %q", c.Biometric.Simulator)
	}

	// Sealed credentials must survive restarts outside development
	if c.Server.Env == "production" && c.Biometric.SecureStoreKey == "" {
		return fmt.Errorf("SECURE_STORE_KEY is required in production")
	}

	if c.UI.ThemeMode != "light" && c.UI.ThemeMode != "dark" {
		return fmt.Errorf("unknown THEME_MODE %q", c.UI.ThemeMode)
	}

	if c.Auth.RegisterRedirectDelay < 0 {
		return fmt.Errorf("REGISTER_REDIRECT_DELAY cannot be negative")
	}

	return nil
}

// Addr is the listen address of the view adapter
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	originsStr := getEnv("ALLOWED_ORIGINS", "")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	if env == "production" {
		return []string{}
	}

	// Development: the UI shell dev servers
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:8081", // Metro bundler
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:8081",
	}
}
