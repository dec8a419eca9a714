package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Level string `mapstructure:"level"`
	// File, when set, receives the JSON log through a buffered async writer
	// and the console keeps a copy.
	File string `mapstructure:"file"`
}

// NewLogger builds the process logger. The returned closer flushes the file
// writer, if any.
func NewLogger(cfg Config) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(ParseLevel(cfg.Level))
	logger.SetOutput(os.Stdout)

	if cfg.File == "" {
		return logger, func() {}, nil
	}

	logFile := filepath.Clean(cfg.File)
	if strings.Contains(logFile, "..") {
		return nil, nil, fmt.Errorf("invalid log file path: %s", cfg.File)
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	asyncWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook(os.Stdout))

	return logger, asyncWriter.Close, nil
}

// ParseLevel falls back to LOG_LEVEL and then to info.
func ParseLevel(level string) logrus.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// Discard returns a logger for tests and tools that should stay quiet.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
