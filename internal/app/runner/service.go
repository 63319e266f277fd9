// Package runner drives a suite of numbered test case directories.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"testsuite/internal/argv"
	"testsuite/internal/domain/suite"
	"testsuite/internal/logging"
	"testsuite/internal/ports"
)

// ErrMissingProgram is returned when the suite root has no test.program file.
var ErrMissingProgram = errors.New("missing " + suite.SuiteProgram + " file")

const logSeparator = "\n" + "XXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXXX" + "\n"

// LoadProgram reads and tokenizes the first line of the suite's test.program.
func LoadProgram(layout suite.Layout) ([]string, error) {
	path := layout.SuiteFile(suite.SuiteProgram)
	if !suite.IsFile(path) {
		return nil, ErrMissingProgram
	}
	line, err := readFirstLine(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", suite.SuiteProgram, err)
	}
	program, err := argv.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return program, nil
}

// Deps bundles the collaborators of a Service.
type Deps struct {
	Launcher ports.Launcher
	Scripts  ports.ScriptRunner
	Reporter ports.Reporter
	Logger   *slog.Logger
}

// Service coordinates suite runs through a launcher and a script runner.
type Service struct {
	layout  suite.Layout
	program []string
	deps    Deps
	logger  *slog.Logger
}

// NewService constructs a Service for the suite at layout with the base
// command line program.
func NewService(layout suite.Layout, program []string, deps Deps) *Service {
	return &Service{
		layout:  layout,
		program: program,
		deps:    deps,
		logger:  logging.OrDiscard(deps.Logger),
	}
}

// Run executes the cases selected by plan and reports a summary. Without an
// explicit list it walks directories from 1 and stops at the first gap. The
// returned error is non-nil only when a case could not be executed at all or
// the suite log could not be written. The post hook still runs in the latter
// case.
func (s *Service) Run(ctx context.Context, plan suite.Plan, opts suite.Options) (suite.Summary, error) {
	cases := &caseRunner{
		layout:   s.layout,
		program:  s.program,
		launcher: s.deps.Launcher,
		scripts:  s.deps.Scripts,
		reporter: s.deps.Reporter,
		cleanup:  opts.Cleanup,
		logger:   s.logger,
	}
	run := newSuiteRun()

	s.runSuiteHook(ctx, suite.SuitePre)

	next := s.sequence(plan)
	for n, ok := next(); ok; n, ok = next() {
		if plan.Explicit() && !s.layout.HasCase(n) {
			s.logger.Warn("skipping missing case", "case", n)
			continue
		}
		if opts.Recheck && !suite.IsFile(s.layout.CaseFile(n, suite.FileOut)) {
			s.logger.Debug("recheck: no previous output", "case", n)
			continue
		}

		result, err := cases.Run(ctx, n)
		if err != nil {
			return run.finalize(), err
		}
		run.record(result)
	}

	summary := run.finalize()
	s.deps.Reporter.SuiteFinished(summary)
	var logErr error
	if !summary.AllPassed() {
		logErr = s.writeSuiteLog(summary.Failed)
	}

	s.runSuiteHook(ctx, suite.SuitePost)
	return summary, logErr
}

// Clean removes generated artifacts from every contiguous case directory.
func (s *Service) Clean(ctx context.Context) error {
	var errs []error
	for _, n := range s.layout.Discover() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := removeArtifacts(s.layout, n); err != nil {
			errs = append(errs, fmt.Errorf("case %d: %w", n, err))
		}
	}
	return errors.Join(errs...)
}

// sequence yields the explicit list in order, or case numbers from 1 while
// their directories exist.
func (s *Service) sequence(plan suite.Plan) func() (int, bool) {
	if plan.Explicit() {
		i := 0
		return func() (int, bool) {
			if i >= len(plan.Cases) {
				return 0, false
			}
			i++
			return plan.Cases[i-1], true
		}
	}
	n := 0
	return func() (int, bool) {
		if !s.layout.HasCase(n + 1) {
			return 0, false
		}
		n++
		return n, true
	}
}

func (s *Service) writeSuiteLog(failed []int) error {
	var sb strings.Builder
	for _, n := range failed {
		data, err := os.ReadFile(s.layout.CaseFile(n, suite.FileLog))
		if err != nil {
			return fmt.Errorf("read log of case %d: %w", n, err)
		}
		sb.Write(data)
		sb.WriteString(logSeparator)
	}
	path := s.layout.SuiteFile(suite.SuiteLog)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", suite.SuiteLog, err)
	}
	return nil
}

func (s *Service) runSuiteHook(ctx context.Context, name string) {
	if !suite.IsFile(s.layout.SuiteFile(name)) {
		return
	}
	code, err := s.deps.Scripts.RunScript(ctx, s.layout.Root, "./"+name)
	if err != nil {
		s.logger.Warn("suite hook did not run", "hook", name, "err", err)
		return
	}
	if code != 0 {
		s.logger.Debug("ignoring suite hook status", "hook", name, "code", code)
	}
}
