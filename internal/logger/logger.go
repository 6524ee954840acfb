// Package logger configures the shared charmbracelet logger.
package logger

import (
	"io"

	"github.com/charmbracelet/log"
)

// New builds a logger at the given level. JSON switches the formatter for
// machine-readable output.
func New(w io.Writer, level string, json bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           parseLevel(level),
		Prefix:          "schemaforge",
	})
	if json {
		l.SetFormatter(log.JSONFormatter)
	}
	return l
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}
