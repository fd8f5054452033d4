// Package logging configures the zerolog logger used across the service.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. The level string follows zerolog's level
// names; pretty switches the output from JSON to a human-readable console
// format for local development.
func New(level string, pretty bool) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("logging: invalid log level %q: %w", level, err)
	}

	var output io.Writer = os.Stderr
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).Level(parsed).With().Timestamp().Logger(), nil
}
