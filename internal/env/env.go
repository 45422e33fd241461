// Package env provides typed environment variable accessors with defaults.
package env

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads a .env file from the working directory when present.
// Missing files are not an error; real environment variables win.
func Load() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}
}

// Str returns the environment variable or def when unset/empty.
func Str(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Int returns the environment variable parsed as int, or def.
func Int(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int env, using default", slog.String("key", key), slog.String("value", v))
		return def
	}
	return n
}

// Bool returns true for "true", "1", "yes" (case-insensitive); def otherwise when unset.
func Bool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	slog.Warn("invalid bool env, using default", slog.String("key", key), slog.String("value", v))
	return def
}

// Duration returns the environment variable parsed with time.ParseDuration, or def.
func Duration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env, using default", slog.String("key", key), slog.String("value", v))
		return def
	}
	return d
}

// List splits a comma-separated environment variable, trimming whitespace.
// Empty entries are dropped.
func List(key, def string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
