package status

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/standalone-kubelet/bootstrap/pkg/config"
	"github.com/standalone-kubelet/bootstrap/pkg/systemd"
	"github.com/standalone-kubelet/bootstrap/pkg/utils"
)

// NodeStatus is the snapshot reported by the status command.
type NodeStatus struct {
	Timestamp            time.Time `json:"timestamp"`
	RuntimeServiceActive bool      `json:"runtime_service_active"`
	RuntimeSocketPresent bool      `json:"runtime_socket_present"`
	KubeletRunning       bool      `json:"kubelet_running"`
	KubeletPIDs          []int32   `json:"kubelet_pids,omitempty"`
}

// Collector gathers the node status
type Collector struct {
	config *config.Config
	logger *logrus.Logger
}

// NewCollector creates a new status Collector
func NewCollector(cfg *config.Config, logger *logrus.Logger) *Collector {
	return &Collector{
		config: cfg,
		logger: logger,
	}
}

// CollectStatus collects the current node status. Individual probe failures
// degrade to "not present" rather than failing the collection.
func (c *Collector) CollectStatus(ctx context.Context) *NodeStatus {
	status := &NodeStatus{
		Timestamp: time.Now().UTC(),
	}

	status.RuntimeServiceActive = systemd.UnitIsActive(ctx, c.config.Containerd.Service)
	status.RuntimeSocketPresent = utils.FileExists(c.config.Containerd.SocketPath)

	matched, err := FindProcesses(ctx, c.config.Kubelet.ProcessName)
	if err != nil {
		c.logger.Warnf("Failed to scan process table: %v", err)
		return status
	}
	status.KubeletRunning = len(matched) > 0
	for _, p := range matched {
		status.KubeletPIDs = append(status.KubeletPIDs, p.Pid)
	}

	return status
}
