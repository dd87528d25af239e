package config

import (
	"fmt"
	"net/url"
)

const (
	// StorageBackendLocal stores bytes on the local filesystem.
	StorageBackendLocal = "local"
	// StorageBackendMinio stores bytes in a MinIO bucket.
	StorageBackendMinio = "minio"
)

// StorageConfig selects and parameterizes the byte-storage backend.
type StorageConfig struct {
	Backend string

	// local backend
	LocalDir string

	// minio backend
	MinioHost     string
	MinioPort     string
	MinioUsername string
	MinioPassword string
	MinioUseSSL   bool
	BucketName    string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Backend: getEnv("STORAGE_BACKEND", StorageBackendLocal),

		LocalDir: getEnv("STORAGE_DIR", "./uploads"),

		MinioHost:     getEnv("MINIO_HOST", "localhost"),
		MinioPort:     getEnv("MINIO_PORT", "9000"),
		MinioUsername: getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword: getEnv("MINIO_PASSWORD", "minioadmin"),
		MinioUseSSL:   getEnvBool("MINIO_USE_SSL", false),
		BucketName:    getEnv("BUCKET_NAME", "godrop"),
	}
}

func rabbitURL() string {
	raw := getEnv("RABBITMQ_URL", "")
	if raw != "" {
		return raw
	}
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%s/%s",
		url.PathEscape(getEnv("RABBITMQ_USER", "guest")),
		url.PathEscape(getEnv("RABBITMQ_PASSWORD", "guest")),
		getEnv("RABBITMQ_HOST", "localhost"),
		getEnv("RABBITMQ_PORT", "5672"),
		url.PathEscape(getEnv("RABBITMQ_VHOST", "/")),
	)
}
