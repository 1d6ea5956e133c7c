package utils

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// sudoCommandLists holds the command lists for sudo determination
var (
	alwaysNeedsSudo = []string{"apt", "apt-get", "dpkg", "systemctl", "modprobe", "sysctl"}
	conditionalSudo = []string{"mkdir", "cp", "chmod", "chown", "mv", "tar", "rm", "install"}
	systemPaths     = []string{"/etc/", "/usr/", "/var/", "/opt/", "/run/", "/boot/"}
)

// requiresSudoAccess determines if a command needs sudo based on command name and arguments
func requiresSudoAccess(name string, args []string) bool {
	for _, sudoCmd := range alwaysNeedsSudo {
		if name == sudoCmd {
			return true
		}
	}

	for _, sudoCmd := range conditionalSudo {
		if name == sudoCmd {
			// Check if any argument involves system paths
			for _, arg := range args {
				for _, sysPath := range systemPaths {
					if strings.HasPrefix(arg, sysPath) {
						return true
					}
				}
			}
			break
		}
	}

	return false
}

// createCommand creates an exec.Cmd with appropriate sudo handling
func createCommand(name string, args []string) *exec.Cmd {
	if requiresSudoAccess(name, args) && os.Geteuid() != 0 {
		allArgs := append([]string{"-E", name}, args...)
		return exec.Command("sudo", allArgs...)
	}
	return exec.Command(name, args...)
}

// RunSystemCommand executes a system command with sudo when needed for privileged operations
func RunSystemCommand(name string, args ...string) error {
	cmd := createCommand(name, args)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunCommandWithOutput executes a command and returns output with sudo when needed
func RunCommandWithOutput(name string, args ...string) (string, error) {
	cmd := createCommand(name, args)
	output, err := cmd.Output()
	return string(output), err
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// FileExistsAndValid checks if a file exists and is not empty (useful for binaries)
func FileExistsAndValid(path string) bool {
	stat, err := os.Stat(path)
	return err == nil && stat.Size() > 0
}

// IsExecutable checks if a path references an executable regular file
func IsExecutable(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.Mode().IsRegular() && stat.Mode().Perm()&0o111 != 0
}

// DirectoryExists checks if a directory exists
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && info.IsDir()
}

// DirectoryEmpty reports whether a directory is missing or contains no entries
func DirectoryEmpty(path string) bool {
	entries, err := os.ReadDir(path)
	if err != nil {
		return true
	}
	return len(entries) == 0
}

// BinaryExists checks if a binary is resolvable on PATH
func BinaryExists(binaryName string) bool {
	_, err := exec.LookPath(binaryName)
	return err == nil
}

// IsServiceActive checks if a systemd service is active via systemctl
func IsServiceActive(serviceName string) bool {
	output, err := RunCommandWithOutput("systemctl", "is-active", serviceName)
	if err != nil {
		return false
	}
	return strings.TrimSpace(output) == "active"
}

// RestartService restarts a systemd service
func RestartService(serviceName string) error {
	return RunSystemCommand("systemctl", "restart", serviceName)
}

// EnableAndStartService enables and starts a systemd service
func EnableAndStartService(serviceName string) error {
	return RunSystemCommand("systemctl", "enable", "--now", serviceName)
}

// CreateTempFile creates a temporary file with given pattern and content
func CreateTempFile(pattern string, content []byte) (*os.File, error) {
	tempFile, err := os.CreateTemp("", pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := tempFile.Write(content); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to write to temporary file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	return tempFile, nil
}

// CleanupTempFile removes a temporary file
func CleanupTempFile(filePath string) {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to cleanup temporary file %s: %v", filePath, err)
	}
}

// WriteFileAtomic writes data to a file atomically using a temporary file and
// rename, preventing partial writes during system failures.
func WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmpFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(filename)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// WriteFileAtomicSystem writes data to a file atomically, going through a
// sudo copy/move for privileged system paths.
func WriteFileAtomicSystem(filename string, data []byte, perm os.FileMode) error {
	if requiresSudoAccess("cp", []string{filename}) && os.Geteuid() != 0 {
		tempFile, err := CreateTempFile("atomic-write-*.tmp", data)
		if err != nil {
			return fmt.Errorf("failed to create temporary file: %w", err)
		}
		defer CleanupTempFile(tempFile.Name())

		tempPath := filename + ".tmp"
		if err := RunSystemCommand("cp", tempFile.Name(), tempPath); err != nil {
			return fmt.Errorf("failed to copy to temporary location: %w", err)
		}
		if err := RunSystemCommand("chmod", fmt.Sprintf("%o", perm), tempPath); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
		if err := RunSystemCommand("mv", tempPath, filename); err != nil {
			return fmt.Errorf("failed to rename to final location: %w", err)
		}

		return nil
	}

	return WriteFileAtomic(filename, data, perm)
}

// EnsureDirectory creates a directory (and parents) if it does not exist,
// falling back to a privileged mkdir for system paths.
func EnsureDirectory(path string) error {
	if DirectoryExists(path) {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err == nil {
		return nil
	}
	if err := RunSystemCommand("mkdir", "-p", path); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// RemoveFiles removes multiple files, continuing on errors and logging results
func RemoveFiles(files []string, logger *logrus.Logger) []error {
	var errors []error

	for _, file := range files {
		logger.Debugf("Removing file: %s", file)
		if err := RunSystemCommand("rm", "-f", file); err != nil {
			logger.Debugf("Failed to remove file %s: %v (may not exist)", file, err)
			errors = append(errors, fmt.Errorf("failed to remove %s: %w", file, err))
		} else {
			logger.Debugf("Removed file: %s", file)
		}
	}

	return errors
}

// DownloadFile downloads a file from URL to destination
func DownloadFile(url, destination string) error {
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download from %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d for %s", resp.StatusCode, url)
	}

	out, err := os.Create(destination)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", destination, err)
	}
	defer func() {
		_ = out.Close()
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write file %s: %w", destination, err)
	}

	return nil
}

// GetArch retrieves the system architecture in release-archive naming
func GetArch() (string, error) {
	arch, err := RunCommandWithOutput("uname", "-m")
	if err != nil {
		return "", fmt.Errorf("failed to get architecture: %w", err)
	}
	arch = strings.TrimSpace(arch)

	switch arch {
	case "armv7l", "armv7":
		arch = "arm"
	case "aarch64":
		arch = "arm64"
	case "x86_64":
		arch = "amd64"
	}
	return arch, nil
}
