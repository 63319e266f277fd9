// Package host runs the program under test and hook scripts as local
// processes.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"
	"time"

	"testsuite/internal/domain/suite"
	"testsuite/internal/logging"
	"testsuite/internal/ports"
)

// Launcher starts the program under test on the host.
type Launcher struct {
	logger *slog.Logger
}

// ensure Launcher implements ports.Launcher.
var _ ports.Launcher = (*Launcher)(nil)

// NewLauncher returns a host Launcher. A nil logger discards diagnostics.
func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{logger: logging.OrDiscard(logger)}
}

// Launch runs inv and waits for it. A nil inv.Stdin reads from the null device.
func (l *Launcher) Launch(ctx context.Context, inv suite.Invocation) (suite.Exit, error) {
	if len(inv.Args) == 0 || inv.Args[0] == "" {
		return suite.Exit{}, fmt.Errorf("launch: empty command")
	}

	// #nosec G204 -- the command line comes from the suite's own program files.
	cmd := exec.CommandContext(ctx, inv.Args[0], inv.Args[1:]...)
	cmd.Dir = inv.Dir
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	l.logger.Debug("launching program", "args", inv.Args, "dir", inv.Dir)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return suite.Exit{}, fmt.Errorf("launch %q: %w", inv.Args, ctxErr)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
	default:
		return suite.Exit{}, fmt.Errorf("launch %q: %w", inv.Args, err)
	}

	code := exitCode(cmd.ProcessState)
	l.logger.Debug("program exited", "args", inv.Args, "code", code, "elapsed", elapsed)
	return suite.Exit{Code: code, Duration: elapsed}, nil
}

// Close is a no-op for host processes.
func (l *Launcher) Close() error {
	return nil
}

// exitCode returns the exit status, or the negated signal number for a
// process killed by a signal.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

