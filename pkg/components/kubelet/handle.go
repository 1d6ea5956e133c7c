package kubelet

import (
	"context"
	"fmt"
	"time"

	procs "github.com/shirou/gopsutil/v4/process"
)

const stopGracePeriod = 10 * time.Second

// Handle is the launcher's grip on a detached kubelet process: the process
// outlives the bootstrap run, but liveness checks and an explicit stop go
// through here instead of ad-hoc process-table greps.
type Handle struct {
	pid int32
}

// NewHandle wraps an already-started process ID
func NewHandle(pid int32) *Handle {
	return &Handle{pid: pid}
}

// PID returns the process ID
func (h *Handle) PID() int32 {
	return h.pid
}

// Alive reports whether the process still exists in the process table. A
// zombie counts as dead: the launcher never reaps its detached children,
// so an exited kubelet lingers in state Z until this process exits.
func (h *Handle) Alive(ctx context.Context) bool {
	p, err := procs.NewProcessWithContext(ctx, h.pid)
	if err != nil {
		return false
	}
	running, err := p.IsRunningWithContext(ctx)
	if err != nil || !running {
		return false
	}

	statuses, err := p.StatusWithContext(ctx)
	if err != nil {
		return true
	}
	for _, s := range statuses {
		if s == procs.Zombie {
			return false
		}
	}
	return true
}

// Stop terminates the process, escalating from SIGTERM to SIGKILL after
// the grace period.
func (h *Handle) Stop(ctx context.Context) error {
	p, err := procs.NewProcessWithContext(ctx, h.pid)
	if err != nil {
		// Already gone.
		return nil
	}

	if err := p.TerminateWithContext(ctx); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", h.pid, err)
	}

	deadline := time.Now().Add(stopGracePeriod)
	for time.Now().Before(deadline) {
		if !h.Alive(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}

	if err := p.KillWithContext(ctx); err != nil {
		return fmt.Errorf("failed to kill pid %d: %w", h.pid, err)
	}
	return nil
}
