package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"testsuite/internal/logging"
	"testsuite/internal/ports"
)

// DefaultShell interprets hook scripts.
const DefaultShell = "/bin/sh"

// Shell runs hook and check scripts through a shell, so a missing or
// non-executable script surfaces as a non-zero status rather than an error.
type Shell struct {
	path   string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

// ensure Shell implements ports.ScriptRunner.
var _ ports.ScriptRunner = (*Shell)(nil)

// NewShell returns a Shell using the interpreter at path (DefaultShell when
// empty). Script output goes to stdout and stderr, or to the process streams
// when they are nil.
func NewShell(path string, stdout, stderr io.Writer, logger *slog.Logger) *Shell {
	if path == "" {
		path = DefaultShell
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Shell{
		path:   path,
		stdout: stdout,
		stderr: stderr,
		logger: logging.OrDiscard(logger),
	}
}

// RunScript executes `<shell> -c <path>` from dir.
func (s *Shell) RunScript(ctx context.Context, dir, path string) (int, error) {
	// #nosec G204 -- hook paths are fixed names inside the suite tree.
	cmd := exec.CommandContext(ctx, s.path, "-c", path)
	cmd.Dir = dir
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, fmt.Errorf("run script %s: %w", path, ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return 0, fmt.Errorf("run script %s: %w", path, err)
	}

	code := exitCode(cmd.ProcessState)
	s.logger.Debug("script finished", "script", path, "code", code)
	return code, nil
}
