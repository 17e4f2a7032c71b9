package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppEnv               string
	LogLevel             slog.Level
	ApiServicePort       string
	ApiGrpcPort          string
	DatabaseDriver       string
	SQLitePath           string
	PostgreSQLHost       string
	PostgreSQLPort       int64
	PostgreSQLUser       string
	PostgreSQLPassword   string
	PostgreSQLDatabase   string
	JWTSecret            string
	JWTIssuer            string
	JWTAudience          string
	JWTExpirationMinutes int64
	RedisHost            string
	RedisPort            int64
	RedisPassword        string
	RedisDatabase        int64
	AuthRateLimit        int64 // Attempts allowed per window
	AuthRateWindow       int64 // Window length in seconds
	ShutdownTimeout      int64 // Seconds
	DefaultPageSize      int64
	MaxPageSize          int64
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:               getEnv("APP_ENV", "development"),                  // Default development
		LogLevel:             getLogLevel(),                                     // Default INFO
		ApiServicePort:       getEnv("API_SERVICE_PORT", "8080"),                // Default 8080
		ApiGrpcPort:          getEnv("API_GRPC_PORT", "50052"),                  // Default 50052 (health)
		DatabaseDriver:       getDatabaseDriver(),                               // Default postgres
		SQLitePath:           getEnv("SQLITE_PATH", "notes.db"),                 // Default ./notes.db
		PostgreSQLHost:       getEnv("POSTGRESQL_HOST", "db"),                   // Default db
		PostgreSQLPort:       getEnvAsInt64("POSTGRESQL_PORT", 5432),            // Default 5432
		PostgreSQLUser:       getEnv("POSTGRESQL_USER", "notes_user"),           // Default user
		PostgreSQLPassword:   getEnv("POSTGRESQL_PASSWORD", "notes_password"),   // Default password
		PostgreSQLDatabase:   getEnv("POSTGRESQL_DATABASE", "notes_db"),         // Default database name
		JWTSecret:            getEnv("JWT_SECRET", "notes_secret_change_me_32b"), // Default secret key
		JWTIssuer:            getEnv("JWT_ISSUER", "notes-api"),                 // Default issuer
		JWTAudience:          getEnv("JWT_AUDIENCE", "notes-api-clients"),       // Default audience
		JWTExpirationMinutes: getEnvAsInt64("JWT_EXPIRATION_MINUTES", 60),       // Default 1 hour
		RedisHost:            getEnv("REDIS_HOST", "redis"),                     // Default redis
		RedisPort:            getEnvAsInt64("REDIS_PORT", 6379),                 // Default 6379
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),                      // Default empty
		RedisDatabase:        getEnvAsInt64("REDIS_DATABASE", 0),                // Default 0
		AuthRateLimit:        getEnvAsInt64("AUTH_RATE_LIMIT", 10),              // Default 10 attempts
		AuthRateWindow:       getEnvAsInt64("AUTH_RATE_WINDOW", 60),             // Default 1 minute
		ShutdownTimeout:      getEnvAsInt64("SHUTDOWN_TIMEOUT", 10),             // Default 10 seconds
		DefaultPageSize:      getEnvAsInt64("DEFAULT_PAGE_SIZE", 10),            // Default 10
		MaxPageSize:          getEnvAsInt64("MAX_PAGE_SIZE", 100),               // Default 100
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
			return value
		}
	}
	return fallback
}

func getLogLevel() slog.Level {
	levelStr := getEnv("LOG_LEVEL", "INFO")

	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getDatabaseDriver() string {
	switch strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")) {
	case "sqlite":
		return "sqlite"
	default:
		return "postgres"
	}
}
