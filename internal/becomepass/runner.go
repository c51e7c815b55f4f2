package becomepass

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultMaxOutput caps how much stdout a secret command may produce.
const DefaultMaxOutput = 1024 * 1024

// waitDelay bounds how long Run waits for stdout to close after the command
// was killed, in case a grandchild still holds the pipe.
const waitDelay = time.Second

// Runner starts a command directly, without a shell, and returns its stdout.
type Runner interface {
	Run(ctx context.Context, command string, args []string, dir string) ([]byte, error)
}

// ExecRunner runs commands as child processes. Stdin is empty and stderr is
// passed through to Stderr. Stdout beyond MaxOutput bytes (DefaultMaxOutput
// when unset) fails the run with ErrOutputTooLarge. Cancelling the context
// kills the command together with any processes it started.
type ExecRunner struct {
	Stderr    io.Writer
	MaxOutput int
}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		Stderr:    os.Stderr,
		MaxOutput: DefaultMaxOutput,
	}
}

func (r *ExecRunner) Run(ctx context.Context, command string, args []string, dir string) ([]byte, error) {
	stdout := &limitedBuffer{max: r.MaxOutput}
	if stdout.max <= 0 {
		stdout.max = DefaultMaxOutput
	}
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Dir = dir
	cmd.Stdout = stdout
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)
	if err := cmd.Run(); err != nil {
		if stdout.overflow {
			return nil, ErrOutputTooLarge
		}
		return nil, err
	}
	return stdout.buf.Bytes(), nil
}

type limitedBuffer struct {
	buf      bytes.Buffer
	max      int
	overflow bool
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	if l.buf.Len()+len(p) > l.max {
		l.overflow = true
		return 0, ErrOutputTooLarge
	}
	return l.buf.Write(p)
}
