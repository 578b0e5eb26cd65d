package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Environment variables understood by the CLI
const (
	LogLevelEnv        = "LOG_LEVEL"
	LogFormatEnv       = "LOG_FORMAT"
	AnsibleBinaryEnv   = "ANSIBLE_BINARY"
	ForceColorEnv      = "FRAMEWORKS_FORCE_COLOR"
	OutputTailBytesEnv = "FRAMEWORKS_OUTPUT_TAIL_BYTES"
)

// LoadEnv loads .env then .env.dev from the working directory, later files
// overriding earlier ones and the process environment.
func LoadEnv(logger *logrus.Logger) {
	files := []string{".env", ".env.dev"}
	loaded := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Overload(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger == nil {
		return
	}
	if len(loaded) == 0 {
		logger.Debug("No local env files loaded; relying on process environment")
		return
	}
	logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetLogLevel gets the log level from LOG_LEVEL, info when unset or unknown
func GetLogLevel() logrus.Level {
	switch strings.ToLower(os.Getenv(LogLevelEnv)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// GetLogFormat returns "json" or "text" from LOG_FORMAT, text by default
func GetLogFormat() string {
	if strings.EqualFold(os.Getenv(LogFormatEnv), "json") {
		return "json"
	}
	return "text"
}

// AnsibleBinary returns the ansible-playbook binary configured through
// ANSIBLE_BINARY, or defaultValue
func AnsibleBinary(defaultValue string) string {
	return strings.TrimSpace(GetEnv(AnsibleBinaryEnv, defaultValue))
}

// ForceColor reports whether playbook runs force colour by default
func ForceColor() bool {
	return GetEnvBool(ForceColorEnv, false)
}

// OutputTailBytes returns how much playbook output a run keeps for its
// summary. Zero or a negative value means the built-in default.
func OutputTailBytes() int {
	if n := GetEnvInt(OutputTailBytesEnv, 0); n > 0 {
		return n
	}
	return 0
}
