package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	TaskStoreURL string
	Port         string
	LogLevel     slog.Level
	Timezone     *time.Location
	Page         PageConfig
	Redis        *RedisConfig
}

// PageConfig controls how the plan collection is listed from the task
// store on refresh.
type PageConfig struct {
	Page    int
	PerPage int
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	tz, err := loadTimezone()
	if err != nil {
		return nil, err
	}

	page := 1
	if v := os.Getenv("PLAN_PAGE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}

	perPage := 50
	if v := os.Getenv("PLAN_PER_PAGE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			perPage = parsed
		}
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		TaskStoreURL: os.Getenv("TASK_STORE_URL"),
		Port:         port,
		LogLevel:     parseLogLevel(os.Getenv("LOG_LEVEL")),
		Timezone:     tz,
		Page: PageConfig{
			Page:    page,
			PerPage: perPage,
		},
		Redis: redisConfig,
	}, nil
}

// loadTimezone resolves the reference timezone every calendar boundary
// (day, week, month) is evaluated in. Defaults to UTC.
func loadTimezone() (*time.Location, error) {
	name := os.Getenv("REFERENCE_TIMEZONE")
	if name == "" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ErrInvalidTimezone
	}
	return loc, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
