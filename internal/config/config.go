package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port        string
	Environment string

	// External lookbook backend (system of record for all entities)
	BackendURL string

	// Redis (storefront cache)
	RedisURL string

	// Dashboard auth
	JWTSecret string

	// Media host for profile images
	CloudinaryURL string

	// Pagination against the backend
	DefaultPageSize int
	MaxPageSize     int

	// Media staging
	MaxMediaPerPost int
	MaxImageSize    int64
	MaxVideoSize    int64
	StagingDir      string

	// Editor sessions
	SessionIdleMinutes int
}

func Load() *Config {
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))
	maxMedia, _ := strconv.Atoi(getEnv("MAX_MEDIA_PER_POST", "4"))
	maxImageMB, _ := strconv.Atoi(getEnv("MAX_IMAGE_SIZE_MB", "10"))
	maxVideoMB, _ := strconv.Atoi(getEnv("MAX_VIDEO_SIZE_MB", "50"))
	sessionIdle, _ := strconv.Atoi(getEnv("SESSION_IDLE_MINUTES", "30"))

	return &Config{
		Port:        getEnv("PORT", "8088"),
		Environment: getEnv("ENVIRONMENT", "development"),

		BackendURL: getEnv("BACKEND_URL", "http://localhost:4000"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,

		MaxMediaPerPost: maxMedia,
		MaxImageSize:    int64(maxImageMB) * 1024 * 1024,
		MaxVideoSize:    int64(maxVideoMB) * 1024 * 1024,
		StagingDir:      getEnv("STAGING_DIR", os.TempDir()),

		SessionIdleMinutes: sessionIdle,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
