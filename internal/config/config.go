package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Port          string
	BaseURL       string
	Env           string
	DBDriver      string
	DBDSN         string
	SessionName   string
	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		BaseURL:       normalizeBaseURL(getEnv("BASE_URL", "/")),
		Env:           getEnv("APP_ENV", "development"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:         getEnv("DB_CONNECTION_STRING", "user:password@tcp(localhost:3306)/snippets?charset=utf8mb4&parseTime=True&loc=Local"),
		SessionName:   getEnv("SESSION_NAME", "snippets_sid"),
		SessionSecret: getEnv("SESSION_SECRET", "change-me"),
		SessionTTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		SessionStore:  strings.ToLower(getEnv("SESSION_STORE", "redis")),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// normalizeBaseURL makes sure the prefix starts and ends with a slash.
func normalizeBaseURL(base string) string {
	base = strings.TrimSpace(base)
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
