// Package shell runs shell command strings for the probes that read the
// routing and link tables.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// DefaultTimeout bounds every probe command.
const DefaultTimeout = 5 * time.Second

// ErrTimeout is returned when a command did not finish within its timeout.
var ErrTimeout = errors.New("command timed out")

// Runner executes a shell command string and returns what it wrote to stdout.
//
// A command that exits with a non-zero status is not an error: whatever it
// printed is returned with a nil error. Only failures to run the command at
// all (spawn errors, timeouts, cancellation) are reported.
type Runner interface {
	Run(ctx context.Context, command string, timeout time.Duration) (string, error)
}

// ExecRunner runs commands through "<Shell> -c".
type ExecRunner struct {
	// Shell is the interpreter binary. Defaults to "sh".
	Shell string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, command string, timeout time.Duration) (string, error) {
	sh := r.Shell
	if sh == "" {
		sh = "sh"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(runCtx, sh, "-c", command)
	cmd.Stdout = &stdout
	// Grandchildren may keep the stdout pipe open after the shell is killed.
	cmd.WaitDelay = 100 * time.Millisecond

	err := cmd.Run()
	if runCtx.Err() != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w after %s: %q", ErrTimeout, timeout, command)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), nil
		}
		return "", fmt.Errorf("run %q: %w", command, err)
	}
	return stdout.String(), nil
}
