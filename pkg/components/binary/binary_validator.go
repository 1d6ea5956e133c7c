// Package binary validates the caller-supplied kubelet executable before
// any system state is touched.
package binary

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ErrNotExecutable reports that the supplied path does not reference a
// runnable kubelet binary.
var ErrNotExecutable = errors.New("kubelet binary path is not an executable file")

// Validator checks the kubelet binary path supplied on the command line
type Validator struct {
	path   string
	logger *logrus.Logger
}

// NewValidator creates a new kubelet binary Validator
func NewValidator(path string, logger *logrus.Logger) *Validator {
	return &Validator{
		path:   path,
		logger: logger,
	}
}

// GetName returns the step name
func (v *Validator) GetName() string {
	return "KubeletBinaryValidator"
}

// IsCompleted always returns false; the binary is re-validated on every run
// since the file may have been replaced or removed between runs.
func (v *Validator) IsCompleted(ctx context.Context) bool {
	return false
}

// Validate checks that a path was actually supplied
func (v *Validator) Validate(ctx context.Context) error {
	if v.path == "" {
		return fmt.Errorf("%w: empty path", ErrNotExecutable)
	}
	return nil
}

// Execute verifies the path references an executable regular file. It
// mutates nothing.
func (v *Validator) Execute(ctx context.Context) error {
	info, err := os.Stat(v.path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotExecutable, v.path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrNotExecutable, v.path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("%w: %s has no execute permission", ErrNotExecutable, v.path)
	}

	v.logger.Infof("Kubelet binary validated: %s", v.path)
	return nil
}
