//go:build !windows

package process

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrInvalidPID is returned for pids that would address the caller's own
// process group or every process the caller may signal.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree sends SIGKILL to the process group led by pid.
// A missing group is not an error: the browser may already have exited.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil && !errors.Is(err, syscall.ESRCH) {
		return fmt.Errorf("killing process group %d: %w", pid, err)
	}
	return nil
}
