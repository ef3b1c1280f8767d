package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// Config holds all flowaudit configuration.
// Priority: env vars > settings.json > defaults.
type Config struct {
	DBPath   string `json:"db_path"`
	LogLevel string `json:"log_level"`
}

func defaultConfig() Config {
	return Config{
		DBPath:   filepath.Join(flowauditDir(), "flowaudit.db"),
		LogLevel: "info",
	}
}

func flowauditDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowaudit"
	}
	return filepath.Join(home, ".flowaudit")
}

func settingsPath() string {
	return filepath.Join(flowauditDir(), "settings.json")
}

func loadConfig() Config {
	cfg := defaultConfig()

	// Layer 2: settings.json (ignore if missing).
	if data, err := os.ReadFile(settingsPath()); err == nil {
		_ = json.Unmarshal(data, &cfg)
	}

	// Layer 3: env vars override.
	if v := os.Getenv("FLOWAUDIT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("FLOWAUDIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
