package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"frameworks/ansible/pkg/config"
)

// Logger represents a logger instance
type Logger = *logrus.Logger

// Fields represents structured logging fields
type Fields = logrus.Fields

// Level represents a log level
type Level = logrus.Level

// Log levels
const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	WarnLevel  = logrus.WarnLevel
	ErrorLevel = logrus.ErrorLevel
)

// NewLogger creates a logger writing to stderr, configured from
// LOG_LEVEL and LOG_FORMAT. Stdout is left to playbook output.
func NewLogger() *logrus.Logger {
	return NewLoggerTo(os.Stderr)
}

// NewLoggerTo creates a configured logger writing to out
func NewLoggerTo(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if config.GetLogFormat() == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	logger.SetLevel(config.GetLogLevel())
	return logger
}
