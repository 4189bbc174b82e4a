package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
	AlertTo    string
}

type ChatConfig struct {
	// TypingDelay is how long the bot "types" before a Direct/Fallback
	// reply appears; HandoffDelay is the extra pause before the mode
	// transition after a Handoff reply.
	TypingDelay  time.Duration
	HandoffDelay time.Duration
	// PointerTTL is the local session pointer validity window, measured
	// from pointer creation.
	PointerTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Support Chat"),
			AlertTo:    getEnv("HANDOFF_ALERT_EMAIL", ""),
		},
		Chat: ChatConfig{
			TypingDelay:  getEnvAsDuration("CHAT_TYPING_DELAY_MS", 600) * time.Millisecond,
			HandoffDelay: getEnvAsDuration("CHAT_HANDOFF_DELAY_MS", 1000) * time.Millisecond,
			PointerTTL:   getEnvAsDuration("CHAT_POINTER_TTL_HOURS", 24) * time.Hour,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int64) time.Duration {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return time.Duration(value)
	}
	return time.Duration(fallback)
}
