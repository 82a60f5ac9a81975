package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// Telegram bot credentials and the always-trusted admin chat.
	TelegramToken string
	AdminChatID   int64
	SecretKey     string

	// DataDir holds the exam-questions/answer-key artifacts; UploadDir
	// holds uploaded source documents.
	DataDir   string
	UploadDir string

	// NotifyTimeout bounds every outbound notification send.
	NotifyTimeout time.Duration

	// AllowedOrigins controls HTTP CORS. Empty slice means all origins
	// are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables. It loads a .env file
// if present but does not fail if missing. TELEGRAM_BOT_TOKEN, ADMIN_CHAT_ID
// and SECRET_KEY are required.
func Load() (*Config, error) {
	_ = godotenv.Load() // Ignore error — .env is optional

	cfg := &Config{
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "pretty"),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		SecretKey:      os.Getenv("SECRET_KEY"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		NotifyTimeout:  time.Duration(getEnvInt("NOTIFY_TIMEOUT_SECONDS", 10)) * time.Second,
		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is missing from the environment")
	}
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY is missing from the environment")
	}

	rawChatID := os.Getenv("ADMIN_CHAT_ID")
	if rawChatID == "" {
		return nil, fmt.Errorf("ADMIN_CHAT_ID is missing from the environment")
	}
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_CHAT_ID must be an integer: %w", err)
	}
	cfg.AdminChatID = chatID

	return cfg, nil
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
