package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    logrus.Level
		wantErr bool
	}{
		{"debug", logrus.DebugLevel, false},
		{"info", logrus.InfoLevel, false},
		{"warning", logrus.WarnLevel, false},
		{"error", logrus.ErrorLevel, false},
		{"  INFO  ", logrus.InfoLevel, false},
		{"trace", logrus.InfoLevel, true},
		{"", logrus.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSetupLoggerStoresLoggerInContext(t *testing.T) {
	ctx := SetupLogger(context.Background(), "debug", "")
	logger := GetLoggerFromContext(ctx)
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("logger level = %v, want debug", logger.GetLevel())
	}
}

func TestSetupLoggerWithLogDir(t *testing.T) {
	dir := t.TempDir()
	logDir := filepath.Join(dir, "logs")

	ctx := SetupLogger(context.Background(), "info", logDir)
	logger := GetLoggerFromContext(ctx)
	logger.Info("hello")

	logFile := filepath.Join(logDir, "kubelet-bootstrap.log")
	if !fileExists(logFile) {
		t.Errorf("expected log file at %s", logFile)
	}
}

func TestGetLoggerFromContextFallback(t *testing.T) {
	logger := GetLoggerFromContext(context.Background())
	if logger == nil {
		t.Fatal("GetLoggerFromContext returned nil for empty context")
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
