package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort string
	LogLevel   slog.Level

	StorageBackend string
	DataDir        string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AutoSave          bool
	AutoLoadOnStartup bool
	SaveOnExit        bool

	SimulationTimeout time.Duration
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   parseLevel(getEnv("LOG_LEVEL", "info")),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
		DataDir:        getEnv("DATA_DIR", "data"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "ledger"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AutoSave:          getEnvBool("AUTO_SAVE", true),
		AutoLoadOnStartup: getEnvBool("AUTO_LOAD_ON_STARTUP", true),
		SaveOnExit:        getEnvBool("SAVE_ON_EXIT", true),

		SimulationTimeout: getEnvDuration("SIMULATION_TIMEOUT", time.Minute),
	}
}

func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// getEnv fetches environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
