package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by storage.Open.
const (
	StorageDriverFile     = "file"
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// Telemetry drivers.
const (
	TelemetryDriverLog   = "log"
	TelemetryDriverRedis = "redis"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	StorageDriver  string
	DataDir        string
	DatabaseURL    string
	MaxDBConns     int32
	RedisURL       string
	RedisKeyPrefix string

	TelemetryDriver string

	MaxUploadBytes int64
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted.
	AllowedOrigins []string

	ExamQuestionCount   int
	PassingScore        int
	ExamTimeLimit       time.Duration
	CountdownInterval   time.Duration
	DefaultExerciseSize int
	// ClearProgressOnImport drops exam, exercise and study progress when a new
	// question set replaces the old one.
	ClearProgressOnImport bool
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "auto"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverFile)),
		DataDir:        getEnv("DATA_DIR", "./data"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MaxDBConns:     int32(getEnvInt("MAX_DB_CONNS", 4)),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "kbtrainer"),

		TelemetryDriver: strings.ToLower(getEnv("TELEMETRY_DRIVER", TelemetryDriverLog)),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)) * 1024 * 1024,
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),

		ExamQuestionCount:     getEnvInt("EXAM_QUESTION_COUNT", 20),
		PassingScore:          getEnvInt("EXAM_PASSING_SCORE", 18),
		ExamTimeLimit:         getEnvDuration("EXAM_TIME_LIMIT", 30*time.Minute),
		CountdownInterval:     getEnvDuration("COUNTDOWN_INTERVAL", time.Second),
		DefaultExerciseSize:   getEnvInt("EXERCISE_DEFAULT_SIZE", 10),
		ClearProgressOnImport: getEnvBool("CLEAR_PROGRESS_ON_IMPORT", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("30m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// NeedsRedis reports whether the configuration requires a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.StorageDriver == StorageDriverRedis || c.TelemetryDriver == TelemetryDriverRedis
}

// NeedsPostgres reports whether the configuration requires a Postgres pool.
// Queued telemetry is drained into Postgres only when a database is configured.
func (c *Config) NeedsPostgres() bool {
	return c.StorageDriver == StorageDriverPostgres ||
		(c.TelemetryDriver == TelemetryDriverRedis && c.DatabaseURL != "")
}
