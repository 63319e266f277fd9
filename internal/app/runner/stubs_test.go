package runner

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"testsuite/internal/domain/suite"
	"testsuite/internal/ports"
)

// stubLauncher echoes the arguments after the program name, or copies stdin
// when the case provides input.
type stubLauncher struct {
	launchFn func(ctx context.Context, inv suite.Invocation) (suite.Exit, error)

	mu    sync.Mutex
	calls [][]string
}

var _ ports.Launcher = (*stubLauncher)(nil)

func (l *stubLauncher) Launch(ctx context.Context, inv suite.Invocation) (suite.Exit, error) {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string(nil), inv.Args...))
	l.mu.Unlock()

	if l.launchFn != nil {
		return l.launchFn(ctx, inv)
	}
	if inv.Stdin != nil {
		if _, err := io.Copy(inv.Stdout, inv.Stdin); err != nil {
			return suite.Exit{}, err
		}
		return suite.Exit{}, nil
	}
	if len(inv.Args) > 1 {
		fmt.Fprintln(inv.Stdout, strings.Join(inv.Args[1:], " "))
	}
	return suite.Exit{}, nil
}

func (l *stubLauncher) Close() error { return nil }

// markers returns the last argument of every launch, which the tests use as
// the case marker.
func (l *stubLauncher) markers() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, args := range l.calls {
		out = append(out, args[len(args)-1])
	}
	return out
}

type stubScripts struct {
	codes map[string]int
	err   error
	paths []string
}

var _ ports.ScriptRunner = (*stubScripts)(nil)

func (s *stubScripts) RunScript(_ context.Context, _ string, path string) (int, error) {
	s.paths = append(s.paths, path)
	if s.err != nil {
		return 0, s.err
	}
	return s.codes[path], nil
}

type recordingReporter struct {
	events  []string
	summary *suite.Summary
}

var _ ports.Reporter = (*recordingReporter)(nil)

func (r *recordingReporter) CaseStarted(n int, title string) {
	r.events = append(r.events, strings.TrimSpace(fmt.Sprintf("start %d %s", n, title)))
}

func (r *recordingReporter) CasePassed(n int) {
	r.events = append(r.events, fmt.Sprintf("pass %d", n))
}

func (r *recordingReporter) CaseFailed(result suite.CaseResult) {
	r.events = append(r.events, fmt.Sprintf("fail %d", result.Number))
}

func (r *recordingReporter) SuiteFinished(summary suite.Summary) {
	r.summary = &summary
}
