package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backend selectors
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	ServerAddr string
	LogLevel   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Upload handling
	UploadDir      string
	MaxUploadBytes int64
	StorageBackend string

	// S3/MinIO configuration (STORAGE_BACKEND=s3)
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	CORSOrigins []string
}

func Load() *Config {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	maxUpload, err := strconv.ParseInt(getEnvOrDefault("MAX_UPLOAD_BYTES", ""), 10, 64)
	if err != nil || maxUpload <= 0 {
		maxUpload = 10 << 20 // 10 MiB
	}

	s3UseSSL, _ := strconv.ParseBool(getEnvOrDefault("S3_USE_SSL", "false"))

	return &Config{
		ServerAddr:     getEnvOrDefault("SERVER_ADDR", ":8080"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		DBHost:         getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:         getEnvOrDefault("DB_PORT", "5432"),
		DBUser:         getEnvOrDefault("DB_USER", "postboard"),
		DBPassword:     getEnvOrDefault("DB_PASSWORD", "postboard_dev_password"),
		DBName:         getEnvOrDefault("DB_NAME", "postboard"),
		UploadDir:      getEnvOrDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: maxUpload,
		StorageBackend: getEnvOrDefault("STORAGE_BACKEND", StorageLocal),
		S3Endpoint:     getEnvOrDefault("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:    getEnvOrDefault("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:    getEnvOrDefault("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:       getEnvOrDefault("S3_BUCKET", "post-images"),
		S3UseSSL:       s3UseSSL,
		CORSOrigins:    splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
