package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIBase = "http://localhost:8000/api/v1"

type Config struct {
	APIBase            string
	HTTPTimeoutSeconds int
	TelegramBotToken   string
	AllowedChatIDs     []int64
	LogLevel           string
	LogFormat          string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file. Problems that
// fall back to defaults are returned as warnings for the caller to log once
// its logger is configured.
func Load() (*Config, []string) {
	var warnings []string
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf(".env could not be parsed, continuing with environment only: %v", err))
	}

	cfg := &Config{
		APIBase:          strings.TrimRight(getEnv("USERBOT_API_BASE", DefaultAPIBase), "/"),
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
	}

	cfg.HTTPTimeoutSeconds = getEnvAsInt("HTTP_TIMEOUT_SECONDS", 20, &warnings)
	cfg.AllowedChatIDs = getEnvAsInt64List("ALLOWED_CHAT_IDS", &warnings)

	return cfg, warnings
}

// HTTPTimeout is the per-request deadline applied by the backend client.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Validate checks the fields every command needs.
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return errors.New("config: USERBOT_API_BASE must be set")
	}
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return errors.New("config: USERBOT_API_BASE must be an http(s) URL")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return errors.New("config: LOG_FORMAT must be console or json")
	}
	return nil
}

// ValidateBot additionally requires the Telegram credentials.
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TelegramBotToken == "" {
		return errors.New("config: TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// ChatAllowed reports whether chatID may use the bot. An empty allow list
// admits every chat.
func (c *Config) ChatAllowed(chatID int64) bool {
	if len(c.AllowedChatIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int, warnings *[]string) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("%s must be an integer, using default %d", key, defaultVal))
		return defaultVal
	}
	return val
}

func getEnvAsInt64List(key string, warnings *[]string) []int64 {
	valStr := os.Getenv(key)
	if valStr == "" {
		return nil
	}
	parts := strings.Split(valStr, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			*warnings = append(*warnings, fmt.Sprintf("%s: skipping non-numeric chat id %q", key, p))
			continue
		}
		out = append(out, id)
	}
	return out
}
