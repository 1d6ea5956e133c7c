package config

import (
	"fmt"
	"net"

	"github.com/spf13/viper"
)

const (
	defaultLogDir   = "/var/log/kubelet-bootstrap"
	defaultLogLevel = "info"

	// Environment variable prefix
	envPrefix = "KUBELET_BOOTSTRAP"

	// minStartupTimeoutSeconds is the floor for the post-launch readiness
	// poll; anything shorter gives the kubelet no realistic chance to fork
	// and show up in the process table.
	minStartupTimeoutSeconds = 5
)

// LoadConfig loads configuration from an optional JSON file and environment
// variables. An empty configPath yields the built-in defaults, which target
// the well-known system paths. Environment variables override file values
// using the KUBELET_BOOTSTRAP_ prefix, e.g. KUBELET_BOOTSTRAP_AGENT_LOGLEVEL.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file at %s: %w", configPath, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// SetDefaults sets default values for any missing configuration fields.
// The defaults reproduce the fixed paths of the original provisioning
// workflow exactly; overriding them is only expected in tests.
func (c *Config) SetDefaults() {
	if c.Agent.LogLevel == "" {
		c.Agent.LogLevel = defaultLogLevel
	}
	if c.Agent.LogDir == "" {
		c.Agent.LogDir = defaultLogDir
	}

	if c.Containerd.Package == "" {
		c.Containerd.Package = "containerd"
	}
	if c.Containerd.BinaryName == "" {
		c.Containerd.BinaryName = "containerd"
	}
	if c.Containerd.Service == "" {
		c.Containerd.Service = "containerd"
	}
	if c.Containerd.ConfigDir == "" {
		c.Containerd.ConfigDir = "/etc/containerd"
	}
	if c.Containerd.ConfigFile == "" {
		c.Containerd.ConfigFile = "/etc/containerd/config.toml"
	}
	if c.Containerd.SocketPath == "" {
		c.Containerd.SocketPath = "/run/containerd/containerd.sock"
	}

	if c.CNI.Version == "" {
		c.CNI.Version = "1.4.1"
	}
	if c.CNI.BinDir == "" {
		c.CNI.BinDir = "/opt/cni/bin"
	}
	if c.CNI.ConfDir == "" {
		c.CNI.ConfDir = "/etc/cni/net.d"
	}
	if c.CNI.BridgeConfigFile == "" {
		c.CNI.BridgeConfigFile = "10-bridge.conf"
	}
	if c.CNI.URLTemplate == "" {
		c.CNI.URLTemplate = "https://github.com/containernetworking/plugins/releases/download/v%s/cni-plugins-linux-%s-v%s.tgz"
	}

	if c.Kubelet.ConfigFile == "" {
		c.Kubelet.ConfigFile = "/var/lib/kubelet/config.yaml"
	}
	if c.Kubelet.ManifestsDir == "" {
		c.Kubelet.ManifestsDir = "/etc/kubernetes/manifests"
	}
	if c.Kubelet.PodManifestFile == "" {
		c.Kubelet.PodManifestFile = "nginx.yaml"
	}
	if c.Kubelet.RuntimeEndpoint == "" {
		c.Kubelet.RuntimeEndpoint = "unix://" + c.Containerd.SocketPath
	}
	if c.Kubelet.ClusterDNS == "" {
		c.Kubelet.ClusterDNS = "10.0.0.10"
	}
	if c.Kubelet.ClusterDomain == "" {
		c.Kubelet.ClusterDomain = "cluster.local"
	}
	if c.Kubelet.Verbosity == 0 {
		c.Kubelet.Verbosity = 2
	}
	if c.Kubelet.LogFile == "" {
		c.Kubelet.LogFile = c.Agent.LogDir + "/kubelet.log"
	}
	if c.Kubelet.ProcessName == "" {
		c.Kubelet.ProcessName = "kubelet"
	}
	if c.Kubelet.StartupTimeoutSeconds == 0 {
		c.Kubelet.StartupTimeoutSeconds = 30
	}
}

// validLogLevels defines the allowed logging levels for the agent
var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"error":   true,
}

// Validate validates the configuration and ensures all required fields are set
func (c *Config) Validate() error {
	if !validLogLevels[c.Agent.LogLevel] {
		return fmt.Errorf("invalid agent.logLevel: %s. Valid values are: debug, info, warning, error", c.Agent.LogLevel)
	}

	if net.ParseIP(c.Kubelet.ClusterDNS) == nil {
		return fmt.Errorf("invalid kubelet.clusterDNS: %s is not an IP address", c.Kubelet.ClusterDNS)
	}

	if c.Kubelet.StartupTimeoutSeconds < minStartupTimeoutSeconds {
		return fmt.Errorf("kubelet.startupTimeoutSeconds must be at least %d, got %d",
			minStartupTimeoutSeconds, c.Kubelet.StartupTimeoutSeconds)
	}

	if c.CNI.Version == "" {
		return fmt.Errorf("cni.version is required")
	}

	return nil
}
