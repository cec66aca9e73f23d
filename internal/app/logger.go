package app

import (
	"strings"

	"github.com/flightdeck-io/flightdeck/pkg/logger"
)

// ConfigureLogging initialises the process-wide zap logger from the
// server.log_level setting. Levels are matched case-insensitively and
// an unset value falls back to info.
func ConfigureLogging(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	return logger.Init(level)
}
