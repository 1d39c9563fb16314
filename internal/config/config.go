package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	BaseURL     string // Base URL prefixed to generated short codes
	ClientURL   string // Frontend base URL (activation/reset links in emails)

	AllowedOrigins []string // CORS allow-list

	// One signing secret per token type
	ActivationTokenSecret string
	AccessTokenSecret     string
	RefreshTokenSecret    string
	ResetPasswordSecret   string

	// Mail provider (SMTP)
	EmailHost     string
	EmailPort     string
	EmailUser     string
	EmailPassword string

	// Per-user URL quotas
	DailyLimit   int
	MonthlyLimit int

	// Transport-level rate limiting
	RateLimitRPS       float64
	RateLimitBurst     int
	RateLimitAuthRPS   float64
	RateLimitAuthBurst int
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Port:        getEnv("PORT", "8070"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8070"),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:3000"),

		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "")),

		ActivationTokenSecret: getEnv("ACTIVATION_TOKEN_SECRET", ""),
		AccessTokenSecret:     getEnv("ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret:    getEnv("REFRESH_TOKEN_SECRET", ""),
		ResetPasswordSecret:   getEnv("RESET_PASSWORD_SECRET", ""),

		EmailHost:     getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:     getEnv("EMAIL_PORT", "587"),
		EmailUser:     getEnv("EMAIL_USER", ""),
		EmailPassword: getEnv("EMAIL_PASSWORD", ""),

		DailyLimit:   getEnvInt("DAILY_LIMIT", 5),
		MonthlyLimit: getEnvInt("MONTHLY_LIMIT", 50),

		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:   getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst: getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// splitList parses a comma-separated env value into a trimmed slice.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
