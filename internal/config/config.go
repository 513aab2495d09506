package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the client configuration, loaded from environment variables.
type Config struct {
	APIBaseURL   string
	SessionToken string
	APITimeout   time.Duration

	LogLevel  string
	LogFormat string

	// Draft persistence backend: "file", "memory" or "redis".
	StorageBackend string
	StoragePath    string

	Redis RedisConfig

	NotificationTTL time.Duration
}

// RedisConfig configures the redis draft-slot storage backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		APIBaseURL:   getEnv("FILMSPHERE_API_URL", "http://localhost:8080"),
		SessionToken: getEnv("FILMSPHERE_SESSION_TOKEN", ""),
		APITimeout:   time.Duration(getEnvInt("FILMSPHERE_API_TIMEOUT_SEC", 30)) * time.Second,

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		StorageBackend: getEnv("FILMSPHERE_STORAGE", "file"),
		StoragePath:    getEnv("FILMSPHERE_STORAGE_PATH", defaultStoragePath()),

		Redis: RedisConfig{
			Addr:     getEnv("FILMSPHERE_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("FILMSPHERE_REDIS_PASSWORD", ""),
			DB:       getEnvInt("FILMSPHERE_REDIS_DB", 0),
			Key:      getEnv("FILMSPHERE_REDIS_KEY", "filmsphere:booking-draft"),
		},

		NotificationTTL: time.Duration(getEnvInt("FILMSPHERE_NOTIFY_TTL_SEC", 8)) * time.Second,
	}
}

func defaultStoragePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return dir + string(os.PathSeparator) + "filmsphere-draft.json"
}

// getEnv returns the environment variable value or the default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer environment variable value or the default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
