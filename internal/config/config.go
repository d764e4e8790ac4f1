package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// LINE Messaging API credentials.
	ChannelSecret string
	AccessToken   string

	// AdminUserID receives push notifications for new and cancelled bookings.
	AdminUserID string

	// OpenAIAPIKey enables the free-form intent classifier when set.
	OpenAIAPIKey string

	Port       string
	DataDir    string
	SessionTTL time.Duration
	LogLevel   string
}

func Load() (*Config, error) {
	// .env is optional — env vars may already be set (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{
		ChannelSecret: os.Getenv("LINE_CHANNEL_SECRET"),
		AccessToken:   os.Getenv("LINE_CHANNEL_ACCESS_TOKEN"),
		AdminUserID:   os.Getenv("ADMIN_USER_ID"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		Port:          os.Getenv("PORT"),
		DataDir:       os.Getenv("DATA_DIR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	ttlMinutes := 30
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_MINUTES %q", v)
		}
		ttlMinutes = n
	}
	cfg.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	for _, req := range []struct {
		name, val string
	}{
		{"LINE_CHANNEL_SECRET", cfg.ChannelSecret},
		{"LINE_CHANNEL_ACCESS_TOKEN", cfg.AccessToken},
		{"ADMIN_USER_ID", cfg.AdminUserID},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}
