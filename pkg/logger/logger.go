package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Context key for storing logger
type contextKey string

const loggerContextKey contextKey = "kubelet-bootstrap-logger"

// ParseLogLevel converts string log level to logrus.Level with validation
func ParseLogLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel, nil
	case "info":
		return logrus.InfoLevel, nil
	case "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level '%s'. Valid levels are: debug, info, warning, error", level)
	}
}

// SetupLogger creates a logger with the specified level and optional log
// directory and stores it in the returned context. When running under
// systemd the formatter drops timestamps since the journal adds its own.
func SetupLogger(ctx context.Context, level, logDir string) context.Context {
	logger := logrus.New()

	logLevel, err := ParseLogLevel(level)
	if err != nil {
		fmt.Printf("Warning: %v. Using 'info' level as default.\n", err)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	logger.SetReportCaller(true)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return fmt.Sprintf("[%s:%d]", filepath.Base(f.File), f.Line), ""
	}

	if isRunningUnderSystemd() {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: true, // systemd journal adds timestamps
			CallerPrettyfier: callerPrettyfier,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat:  "2006-01-02 15:04:05",
			FullTimestamp:    true,
			ForceColors:      true,
			CallerPrettyfier: callerPrettyfier,
		})
	}

	writers := []io.Writer{os.Stdout}
	if logDir != "" {
		if fileWriter, err := setupLogFileWriter(logDir); err != nil {
			fmt.Printf("Warning: Failed to setup log file in directory '%s': %v. Logging to console only.\n", logDir, err)
		} else {
			writers = append(writers, fileWriter)
		}
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return context.WithValue(ctx, loggerContextKey, logger)
}

// isRunningUnderSystemd detects if the process is running under systemd
func isRunningUnderSystemd() bool {
	if os.Getenv("JOURNAL_STREAM") != "" {
		return true
	}
	if data, err := os.ReadFile("/proc/1/comm"); err == nil {
		return strings.TrimSpace(string(data)) == "systemd"
	}
	return false
}

// setupLogFileWriter creates an append writer inside the log directory,
// creating the directory if needed.
func setupLogFileWriter(logDir string) (io.Writer, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory '%s': %w", logDir, err)
	}

	logFilePath := filepath.Join(logDir, "kubelet-bootstrap.log")
	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file '%s': %w", logFilePath, err)
	}

	return file, nil
}

// GetLoggerFromContext retrieves the logger from context
func GetLoggerFromContext(ctx context.Context) *logrus.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*logrus.Logger); ok {
		return logger
	}
	// Fallback to default logger if not found in context
	return logrus.New()
}
