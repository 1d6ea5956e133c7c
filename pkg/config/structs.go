package config

import "time"

// Config carries every path, endpoint, and tunable the provisioning
// workflow touches. Stages receive it explicitly so tests can point them
// at temporary directories instead of the real system paths.
type Config struct {
	Agent      AgentConfig      `json:"agent"`
	Containerd ContainerdConfig `json:"containerd"`
	CNI        CNIConfig        `json:"cni"`
	Kubelet    KubeletConfig    `json:"kubelet"`
}

// AgentConfig contains operational settings for the bootstrap tool itself.
type AgentConfig struct {
	LogLevel string `json:"logLevel"`
	LogDir   string `json:"logDir"`
}

// ContainerdConfig describes the container runtime installation.
type ContainerdConfig struct {
	// Package is the apt package that provides the runtime.
	Package string `json:"package"`
	// BinaryName must be resolvable on PATH once installed.
	BinaryName string `json:"binaryName"`
	// Service is the systemd unit managing the runtime.
	Service    string `json:"service"`
	ConfigDir  string `json:"configDir"`
	ConfigFile string `json:"configFile"`
	// SocketPath is the runtime control socket; its presence is the
	// postcondition of the runtime stage.
	SocketPath string `json:"socketPath"`
}

// CNIConfig describes the network plugin installation.
type CNIConfig struct {
	// Version is the pinned plugins release, without the leading "v".
	Version string `json:"version"`
	BinDir  string `json:"binDir"`
	ConfDir string `json:"confDir"`
	// BridgeConfigFile is the bridge descriptor file name inside ConfDir.
	BridgeConfigFile string `json:"bridgeConfigFile"`
	// URLTemplate expects (version, arch, version).
	URLTemplate string `json:"urlTemplate"`
}

// KubeletConfig describes the kubelet configuration and launch settings.
type KubeletConfig struct {
	ConfigFile      string `json:"configFile"`
	ManifestsDir    string `json:"manifestsDir"`
	PodManifestFile string `json:"podManifestFile"`
	RuntimeEndpoint string `json:"runtimeEndpoint"`
	ClusterDNS      string `json:"clusterDNS"`
	ClusterDomain   string `json:"clusterDomain"`
	Verbosity       int    `json:"verbosity"`
	// LogFile receives the detached kubelet's combined output.
	LogFile string `json:"logFile"`
	// ProcessName is the process-table pattern for liveness checks.
	ProcessName string `json:"processName"`
	// StartupTimeoutSeconds bounds the post-launch readiness poll.
	StartupTimeoutSeconds int `json:"startupTimeoutSeconds"`
}

// StartupTimeout returns the readiness poll bound as a duration.
func (k KubeletConfig) StartupTimeout() time.Duration {
	return time.Duration(k.StartupTimeoutSeconds) * time.Second
}

// BridgeConfigPath returns the full path of the bridge network descriptor.
func (c CNIConfig) BridgeConfigPath() string {
	return c.ConfDir + "/" + c.BridgeConfigFile
}

// PodManifestPath returns the full path of the static pod manifest.
func (k KubeletConfig) PodManifestPath() string {
	return k.ManifestsDir + "/" + k.PodManifestFile
}
