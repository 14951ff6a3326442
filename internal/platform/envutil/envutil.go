package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/startupai/startupai-backend/internal/platform/logger"
)

func GetEnv(key, fallback string, log *logger.Logger) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		if log != nil {
			log.Debug("Env var not set, using default", "key", key, "default", fallback)
		}
		return fallback
	}
	return val
}

func GetEnvAsInt(key string, fallback int, log *logger.Logger) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		if log != nil {
			log.Warn("Env var not an int, using default", "key", key, "value", val, "default", fallback)
		}
		return fallback
	}
	return parsed
}

func GetEnvAsBool(key string, fallback bool) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if val == "" {
		return fallback
	}
	switch val {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
