package utils

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvOrDefault treats an empty variable the same as an unset one
func GetEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func GetEnvIntOrDefault(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

// GetEnvDurationOrDefault accepts Go duration strings such as "30s" or "1h"
func GetEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// GetEnvListOrDefault splits a comma separated variable and drops blank entries
func GetEnvListOrDefault(key string, defaultValue []string) []string {
	raw := GetEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	items := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	raw := GetEnvOrDefault(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := parse(raw)
	if err != nil {
		slog.Warn("Ignoring malformed environment variable", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return value
}
