package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/SaaSFox/internal/pkg/env"
)

// Setup configures the default fiber logger from LOG_LEVEL.
func Setup() {
	log.SetLevel(ParseLevel(env.GetEnv("LOG_LEVEL", "info")))
}

// ParseLevel maps a level name to a fiber log level, defaulting to info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.LevelTrace
	case "debug":
		return log.LevelDebug
	case "warn", "warning":
		return log.LevelWarn
	case "error":
		return log.LevelError
	default:
		return log.LevelInfo
	}
}
