package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// ShareCodeLength is the length of the public share code.
	ShareCodeLength = 8
	// ShareCodeMaxRetries bounds collision retries during code generation.
	ShareCodeMaxRetries = 10
	// SaveChunkBytes is the streaming chunk size for storage writes.
	SaveChunkBytes = 64 * 1024

	defaultMaxUploadBytes   = 100 * 1024 * 1024
	defaultAdminTokenTTL    = 24 * time.Hour
	defaultDownloadTokenTTL = 5 * time.Minute
)

type Config struct {
	JWTSecret     string
	AdminUsername string
	AdminPassword string

	PublicBaseURL string
	CORSOrigins   []string
	ListenAddr    string

	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	RabbitMQPrefetch int

	MaxUploadBytes   int64
	AdminTokenTTL    time.Duration
	DownloadTokenTTL time.Duration

	PublicRate  float64
	PublicBurst int

	WorkerConcurrency int
	WorkerRate        float64
	WorkerBurst       int
	WorkerRetryMax    int

	Storage StorageConfig
}

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Load reads configuration from the environment. The returned Config is
// built once at startup, handed to each component, and never mutated.
func Load() *Config {
	return &Config{
		JWTSecret:     getEnv("JWT_SECRET", "l=ax+b"),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		CORSOrigins:   getEnvList("CORS_ORIGINS", nil),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "3306"),
		DBUser: getEnv("DB_USER", "root"),
		DBPass: getEnv("DB_PASS", "root"),
		DBName: getEnv("DB_NAME", "godrop"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQURL:      rabbitURL(),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 8),

		MaxUploadBytes:   getEnvInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		AdminTokenTTL:    getEnvDuration("ADMIN_TOKEN_TTL", defaultAdminTokenTTL),
		DownloadTokenTTL: getEnvDuration("DOWNLOAD_TOKEN_TTL", defaultDownloadTokenTTL),

		PublicRate:  getEnvFloat("PUBLIC_RATE", 10),
		PublicBurst: getEnvInt("PUBLIC_BURST", 20),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerRate:        getEnvFloat("WORKER_RATE", 50),
		WorkerBurst:       getEnvInt("WORKER_BURST", 100),
		WorkerRetryMax:    getEnvInt("WORKER_RETRY_MAX", 5),

		Storage: loadStorageConfig(),
	}
}
