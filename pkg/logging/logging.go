// Package logging builds the process logger.
package logging

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns the process logger. Development gets the console writer, every
// other environment logs JSON. Unknown levels fall back to info.
func New(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}
