//go:build windows

package process

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
)

// ErrInvalidPID is returned for pids that cannot name a process tree.
var ErrInvalidPID = errors.New("invalid pid")

// KillTree force-kills pid and its children with taskkill.
// /F forces termination, /T includes the child tree.
func KillTree(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPID, pid)
	}
	// taskkill exits non-zero when the process is already gone.
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
	return nil
}
