package config

import (
	"os"
	"strings"
)

type Env struct {
	AppAddr     string
	GinMode     string
	ConfigPath  string
	DBDSN       string
	RedisAddr   string
	JWTSecret   string
	LogLevel    string
	LogFormat   string
	CORSOrigins string
}

func LoadEnv() Env {
	return Env{
		AppAddr:     getenv("APP_ADDR", ":8080"),
		GinMode:     getenv("GIN_MODE", ""),
		ConfigPath:  getenv("CONFIG_PATH", DefaultConfigPath),
		DBDSN:       getenv("DB_DSN", ""),
		RedisAddr:   getenv("REDIS_ADDR", ""),
		JWTSecret:   getenv("JWT_SECRET", ""),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
		CORSOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),
	}
}

func getenv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}
