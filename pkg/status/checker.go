// Package status answers "is the kubelet running" from the process table
// and collects a node-level snapshot for the status command.
package status

import (
	"context"
	"strings"

	procs "github.com/shirou/gopsutil/v4/process"
)

// FindProcesses returns the processes whose name or command line matches
// the given process name. Processes that disappear mid-scan are skipped.
func FindProcesses(ctx context.Context, processName string) ([]*procs.Process, error) {
	all, err := procs.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*procs.Process
	for _, p := range all {
		if p == nil {
			continue
		}

		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Raced with a process exiting between listing and inspection.
			continue
		}

		if name == processName {
			matched = append(matched, p)
			continue
		}

		// Long names get truncated in /proc/<pid>/comm; fall back to the
		// command line.
		cmdline, err := p.CmdlineWithContext(ctx)
		if err == nil && cmdlineMatches(cmdline, processName) {
			matched = append(matched, p)
		}
	}

	return matched, nil
}

// IsProcessRunning reports whether at least one process matches the name.
func IsProcessRunning(ctx context.Context, processName string) (bool, error) {
	matched, err := FindProcesses(ctx, processName)
	if err != nil {
		return false, err
	}
	return len(matched) > 0, nil
}

// cmdlineMatches checks whether the first command-line token names the
// process, so "kubelet" matches "/tmp/kubelet --config ..." but not an
// unrelated process that merely mentions kubelet in an argument.
func cmdlineMatches(cmdline, processName string) bool {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return false
	}
	argv0 := fields[0]
	if idx := strings.LastIndex(argv0, "/"); idx >= 0 {
		argv0 = argv0[idx+1:]
	}
	return argv0 == processName
}
