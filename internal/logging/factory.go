package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// LogFormat represents the log output format.
type LogFormat string

const (
	// FormatText is zap's console encoding.
	FormatText LogFormat = "text"
	// FormatJSON is structured JSON format.
	FormatJSON LogFormat = "json"
)

// Config represents logging configuration.
type Config struct {
	Level   string
	Format  LogFormat
	Service string
	Version string
	// File, when set, receives log entries instead of stderr so they do not
	// interleave with the board on the terminal.
	File string
}

// NewLoggerFromConfig creates a logger based on configuration. The returned
// closer is nil unless a log file was opened.
func NewLoggerFromConfig(cfg *Config) (*StructuredLogger, io.Closer, error) {
	format := LogFormat(strings.ToLower(string(cfg.Format)))
	if format != FormatJSON {
		format = FormatText
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}

	return NewStructuredLogger(w, format, cfg.Service, cfg.Version, cfg.Level), closer, nil
}
