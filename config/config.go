package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port               string
	DBConnectionString string
	TempDir            string
	CORSAllowOrigins   string

	// HTTP rate limiter
	RateLimitPerSecond int
	RateLimitBurst     int
	RateLimitWindowMin int

	// Campaign throttling
	DelayBetweenMessages time.Duration
	DelayBeforeMedia     time.Duration

	// Media
	MaxMediaSizeBytes int64
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "3000"),
		DBConnectionString: getEnv("DATABASE_URL", ""),
		TempDir:            getEnv("TEMP_DIR", "./temp"),
		CORSAllowOrigins:   getEnv("CORS_ALLOW_ORIGINS", "*"),

		RateLimitPerSecond: getEnvAsInt("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
		RateLimitWindowMin: getEnvAsInt("RATE_LIMIT_WINDOW_MINUTES", 3),

		DelayBetweenMessages: time.Duration(getEnvAsInt("DELAY_BETWEEN_MESSAGES_MS", 1200)) * time.Millisecond,
		DelayBeforeMedia:     time.Duration(getEnvAsInt("DELAY_BEFORE_MEDIA_MS", 1000)) * time.Millisecond,

		MaxMediaSizeBytes: int64(getEnvAsInt("MAX_MEDIA_SIZE_MB", 16)) * 1024 * 1024,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
