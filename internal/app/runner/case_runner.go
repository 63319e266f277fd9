package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"testsuite/internal/argv"
	"testsuite/internal/diff"
	"testsuite/internal/domain/suite"
	"testsuite/internal/ports"
)

const diffIndent = "    "

// fileChecks pairs each generated artifact with its check, in comparison order.
var fileChecks = []struct {
	artifact string
	check    suite.Check
}{
	{suite.FileRet, suite.CheckReturnCode},
	{suite.FileOut, suite.CheckStdout},
	{suite.FileErr, suite.CheckStderr},
}

// caseRunner executes single cases for one suite run.
type caseRunner struct {
	layout   suite.Layout
	program  []string
	launcher ports.Launcher
	scripts  ports.ScriptRunner
	reporter ports.Reporter
	cleanup  bool
	logger   *slog.Logger
}

// Run executes case n: pre hook, program, comparisons, then the fail or post
// hook. Comparison failures are reported in the result; errors are returned
// only when the case could not be executed or inspected.
func (r *caseRunner) Run(ctx context.Context, n int) (suite.CaseResult, error) {
	title, err := r.readTitle(n)
	if err != nil {
		return suite.CaseResult{}, err
	}
	r.reporter.CaseStarted(n, title)

	r.runHook(ctx, n, suite.FilePre)

	args, err := r.arguments(n)
	if err != nil {
		return suite.CaseResult{}, err
	}

	if err := r.execute(ctx, n, args); err != nil {
		return suite.CaseResult{}, fmt.Errorf("case %d: %w", n, err)
	}

	result := suite.CaseResult{Number: n, Title: title}
	result.Failures, err = r.compare(ctx, n)
	if err != nil {
		return suite.CaseResult{}, fmt.Errorf("case %d: %w", n, err)
	}

	if len(result.Failures) > 0 {
		logPath := r.layout.CaseFile(n, suite.FileLog)
		text, err := composeLog(r.layout, n, title, result.Failures)
		if err != nil {
			return suite.CaseResult{}, fmt.Errorf("case %d: compose log: %w", n, err)
		}
		if err := os.WriteFile(logPath, []byte(text), 0o644); err != nil {
			return suite.CaseResult{}, fmt.Errorf("case %d: write log: %w", n, err)
		}
		result.LogPath = logPath

		r.reporter.CaseFailed(result)
		r.runHook(ctx, n, suite.FileFail)
		return result, nil
	}

	result.Passed = true
	r.reporter.CasePassed(n)
	r.runHook(ctx, n, suite.FilePost)

	if r.cleanup {
		if err := removeArtifacts(r.layout, n); err != nil {
			return result, fmt.Errorf("case %d: %w", n, err)
		}
		r.logger.Debug("removed artifacts", "case", n)
	}
	return result, nil
}

func (r *caseRunner) readTitle(n int) (string, error) {
	path := r.layout.CaseFile(n, suite.FileTitle)
	if !suite.IsFile(path) {
		return "", nil
	}
	line, err := readFirstLine(path)
	if err != nil {
		return "", fmt.Errorf("case %d: read title: %w", n, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// arguments builds the command line: the case's own program file or the
// suite program, followed by the first line of the case's test file.
func (r *caseRunner) arguments(n int) ([]string, error) {
	var args []string

	programPath := r.layout.CaseFile(n, suite.FileProgram)
	if suite.IsFile(programPath) {
		data, err := os.ReadFile(programPath)
		if err != nil {
			return nil, fmt.Errorf("case %d: read program: %w", n, err)
		}
		args, err = argv.Split(string(data))
		if err != nil {
			return nil, fmt.Errorf("case %d: parse %s: %w", n, programPath, err)
		}
	} else {
		args = append(args, r.program...)
	}

	argsPath := r.layout.CaseFile(n, suite.FileArgs)
	if suite.IsFile(argsPath) {
		line, err := readFirstLine(argsPath)
		if err != nil {
			return nil, fmt.Errorf("case %d: read arguments: %w", n, err)
		}
		extra, err := argv.Split(line)
		if err != nil {
			return nil, fmt.Errorf("case %d: parse %s: %w", n, argsPath, err)
		}
		args = append(args, extra...)
	}
	return args, nil
}

// execute runs the program with the case's stdin and records out, err and ret.
func (r *caseRunner) execute(ctx context.Context, n int, args []string) error {
	inv := suite.Invocation{
		Args: args,
		Dir:  r.layout.Root,
	}

	inPath := r.layout.CaseFile(n, suite.FileStdin)
	if suite.IsFile(inPath) {
		in, err := os.Open(inPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()
		inv.Stdin = in
	}

	out, err := os.Create(r.layout.CaseFile(n, suite.FileOut))
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()
	inv.Stdout = out

	errFile, err := os.Create(r.layout.CaseFile(n, suite.FileErr))
	if err != nil {
		return fmt.Errorf("create error output: %w", err)
	}
	defer errFile.Close()
	inv.Stderr = errFile

	r.logger.Debug("running case", "case", n, "args", args)
	exit, err := r.launcher.Launch(ctx, inv)
	if err != nil {
		return err
	}

	if err := errors.Join(out.Close(), errFile.Close()); err != nil {
		return fmt.Errorf("close outputs: %w", err)
	}

	ret := fmt.Sprintf("%d\n", exit.Code)
	if err := os.WriteFile(r.layout.CaseFile(n, suite.FileRet), []byte(ret), 0o644); err != nil {
		return fmt.Errorf("write return code: %w", err)
	}
	return nil
}

// compare runs every check, regardless of earlier failures.
func (r *caseRunner) compare(ctx context.Context, n int) ([]suite.Failure, error) {
	var failures []suite.Failure

	for _, fc := range fileChecks {
		ref := r.layout.RefFile(n, fc.artifact)
		if !suite.IsFile(ref) {
			continue
		}
		same, d, err := diff.Files(ref, r.layout.CaseFile(n, fc.artifact), diffIndent)
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", fc.artifact, err)
		}
		if !same {
			failures = append(failures, suite.Failure{
				Check:   fc.check,
				Message: string(fc.check) + " different",
				Diff:    d,
			})
		}
	}

	if suite.IsFile(r.layout.CaseFile(n, suite.FileCheck)) {
		code, err := r.scripts.RunScript(ctx, r.layout.Root, r.layout.RelCaseFile(n, suite.FileCheck))
		if err != nil {
			return nil, fmt.Errorf("run check: %w", err)
		}
		if code != 0 {
			failures = append(failures, suite.Failure{
				Check:   suite.CheckExtra,
				Message: string(suite.CheckExtra) + " failed",
				Diff:    fmt.Sprintf("%sexit status %d\n", diffIndent, code),
			})
		}
	}
	return failures, nil
}

// runHook runs an optional case hook. Its outcome is ignored.
func (r *caseRunner) runHook(ctx context.Context, n int, name string) {
	if !suite.IsFile(r.layout.CaseFile(n, name)) {
		return
	}
	rel := r.layout.RelCaseFile(n, name)
	code, err := r.scripts.RunScript(ctx, r.layout.Root, rel)
	if err != nil {
		r.logger.Warn("hook did not run", "hook", rel, "err", err)
		return
	}
	if code != 0 {
		r.logger.Debug("ignoring hook status", "hook", rel, "code", code)
	}
}

// removeArtifacts deletes the generated out, ret and err files of case n.
func removeArtifacts(layout suite.Layout, n int) error {
	var errs []error
	for _, name := range suite.Artifacts {
		if err := os.Remove(layout.CaseFile(n, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// readFirstLine returns the first line of path including its newline.
func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return line, nil
}
