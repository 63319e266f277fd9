package runner

import (
	"fmt"
	"os"
	"strings"

	"testsuite/internal/domain/suite"
)

const logRule = "=============\n"

// composeLog renders the human-readable failure log of case n: title, return
// code, standard output and standard error with their references, and a diff
// section for every failing check.
func composeLog(layout suite.Layout, n int, title string, failures []suite.Failure) (string, error) {
	failed := make(map[suite.Check]suite.Failure, len(failures))
	for _, f := range failures {
		failed[f.Check] = f
	}

	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "%s\n\n", title)
	} else {
		fmt.Fprintf(&sb, "Test %d:\n\n", n)
	}

	sb.WriteString(logRule)
	ret, err := os.ReadFile(layout.CaseFile(n, suite.FileRet))
	if err != nil {
		return "", fmt.Errorf("read return code: %w", err)
	}
	fmt.Fprintf(&sb, "return code: %s", withNewline(string(ret)))
	if ref, ok, err := readOptional(layout.RefFile(n, suite.FileRet)); err != nil {
		return "", err
	} else if ok {
		fmt.Fprintf(&sb, "reference: %s", withNewline(ref))
	}

	sections := []struct {
		heading  string
		artifact string
		check    suite.Check
	}{
		{"standard out", suite.FileOut, suite.CheckStdout},
		{"standard err", suite.FileErr, suite.CheckStderr},
	}
	for _, s := range sections {
		sb.WriteString(logRule)
		actual, err := os.ReadFile(layout.CaseFile(n, s.artifact))
		if err != nil {
			return "", fmt.Errorf("read %s: %w", s.artifact, err)
		}
		fmt.Fprintf(&sb, "%s:\n%s", s.heading, withNewline(string(actual)))

		ref, ok, err := readOptional(layout.RefFile(n, s.artifact))
		if err != nil {
			return "", err
		}
		if ok {
			fmt.Fprintf(&sb, "reference:\n%s", withNewline(ref))
		}
		if f, ok := failed[s.check]; ok {
			fmt.Fprintf(&sb, "diff:\n%s", withNewline(f.Diff))
		}
	}

	if f, ok := failed[suite.CheckExtra]; ok {
		sb.WriteString(logRule)
		fmt.Fprintf(&sb, "%s:\n%s", f.Message, withNewline(f.Diff))
	}
	return sb.String(), nil
}

func readOptional(path string) (string, bool, error) {
	if !suite.IsFile(path) {
		return "", false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
