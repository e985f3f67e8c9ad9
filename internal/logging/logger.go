package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnvVar overrides the configured level when set.
const LevelEnvVar = "SMART_GALLERY_LOG_LEVEL"

// Init initializes the global logger. level is one of debug, info, warn,
// error (default: info); SMART_GALLERY_LOG_LEVEL takes precedence.
func Init(level string) {
	if v := os.Getenv(LevelEnvVar); v != "" {
		level = v
	}
	zerolog.SetGlobalLevel(ParseLevel(level))

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
