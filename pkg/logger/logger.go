package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Init sets the global level from LOG_LEVEL (debug, info, warn, error)
func Init() {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

// Info printf-style info log used by bootstrap code
func Info(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warn printf-style warning log
func Warn(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Error printf-style error log
func Error(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}
