package config

import (
	"os"
	"strconv"
	"time"
)

type OTPConfig struct {
	CodeLength        int
	CodeTimeout       time.Duration
	MaxAttempts       int
	MaxIssuePerWindow int
	RateLimitWindow   time.Duration
}

func LoadOTPConfig() *OTPConfig {
	return &OTPConfig{
		CodeLength:        getEnvAsInt("OTP_CODE_LENGTH", 6),
		CodeTimeout:       getEnvAsDuration("OTP_CODE_TIMEOUT", 5*time.Minute),
		MaxAttempts:       getEnvAsInt("OTP_MAX_ATTEMPTS", 5),
		MaxIssuePerWindow: getEnvAsInt("OTP_MAX_ISSUE_PER_WINDOW", 3),
		RateLimitWindow:   getEnvAsDuration("OTP_RATE_LIMIT_WINDOW", 15*time.Minute),
	}
}

type ChatLinkConfig struct {
	CodeTimeout time.Duration
	BotUsername string
}

func LoadChatLinkConfig() *ChatLinkConfig {
	return &ChatLinkConfig{
		CodeTimeout: getEnvAsDuration("CHAT_LINK_CODE_TIMEOUT", 5*time.Minute),
		BotUsername: getEnv("TELEGRAM_BOT_USERNAME", "duitku_bot"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
