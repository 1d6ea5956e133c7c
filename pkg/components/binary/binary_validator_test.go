package binary

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func newQuietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestValidatorExecute(t *testing.T) {
	dir := t.TempDir()

	executable := filepath.Join(dir, "kubelet")
	if err := os.WriteFile(executable, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plainFile := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plainFile, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"executable file passes", executable, false},
		{"non-executable file fails", plainFile, true},
		{"missing path fails", filepath.Join(dir, "missing"), true},
		{"directory fails", dir, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.path, newQuietLogger())
			err := v.Execute(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrNotExecutable) {
				t.Errorf("Execute() error = %v, want ErrNotExecutable", err)
			}
		})
	}
}

func TestValidatorValidateRejectsEmptyPath(t *testing.T) {
	v := NewValidator("", newQuietLogger())
	if err := v.Validate(context.Background()); !errors.Is(err, ErrNotExecutable) {
		t.Errorf("Validate() error = %v, want ErrNotExecutable", err)
	}
}

func TestValidatorNeverReportsCompleted(t *testing.T) {
	v := NewValidator("/usr/bin/true", newQuietLogger())
	if v.IsCompleted(context.Background()) {
		t.Error("IsCompleted() = true, validator must run every time")
	}
}
