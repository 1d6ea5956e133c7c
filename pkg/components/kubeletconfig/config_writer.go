// Package kubeletconfig writes the kubelet configuration file once;
// presence alone satisfies the contract, with no diffing or upgrades.
package kubeletconfig

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// Writer creates the kubelet configuration file if it is absent
type Writer struct {
	config *config.Config
	logger *logrus.Logger
}

// NewWriter creates a new kubelet config Writer
func NewWriter(cfg *config.Config, logger *logrus.Logger) *Writer {
	return &Writer{
		config: cfg,
		logger: logger,
	}
}

// GetName returns the step name
func (w *Writer) GetName() string {
	return "KubeletConfigWriter"
}

// IsCompleted reports whether the config file already exists; an existing
// file is never diffed or amended.
func (w *Writer) IsCompleted(ctx context.Context) bool {
	return utils.FileExistsAndValid(w.config.Kubelet.ConfigFile)
}

// Validate validates prerequisites for writing the configuration
func (w *Writer) Validate(ctx context.Context) error {
	if w.config.Kubelet.RuntimeEndpoint == "" {
		return fmt.Errorf("kubelet runtime endpoint cannot be empty")
	}
	return nil
}

// Execute renders and writes the kubelet configuration, creating the parent
// directory first. The rendered document is parsed back as YAML before the
// write so a bad substitution never lands on disk.
func (w *Writer) Execute(ctx context.Context) error {
	content := w.render()

	var parsed map[string]interface{}
	if err := yaml.Unmarshal([]byte(content), &parsed); err != nil {
		return fmt.Errorf("rendered kubelet config is not valid YAML: %w", err)
	}

	if err := utils.EnsureDirectory(filepath.Dir(w.config.Kubelet.ConfigFile)); err != nil {
		return err
	}
	if err := utils.WriteFileAtomicSystem(w.config.Kubelet.ConfigFile, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write kubelet config file: %w", err)
	}

	w.logger.Infof("Kubelet configuration created at %s", w.config.Kubelet.ConfigFile)
	return nil
}

// render substitutes the configured paths and endpoints into the template.
func (w *Writer) render() string {
	return fmt.Sprintf(kubeletConfigTemplate,
		w.config.Kubelet.ClusterDomain,
		w.config.Kubelet.ClusterDNS,
		w.config.Kubelet.RuntimeEndpoint,
		w.config.Kubelet.ManifestsDir)
}
