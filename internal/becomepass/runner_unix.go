//go:build unix

package becomepass

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup puts the command in its own process group and makes
// context cancellation signal the whole group.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
