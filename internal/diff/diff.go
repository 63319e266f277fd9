// Package diff renders line-oriented differences between reference and
// actual outputs.
//
// The format follows ndiff: every line is prefixed with "  " when present in
// both inputs, "- " when only in the reference and "+ " when only in the
// actual output.
package diff

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	prefixEqual  = "  "
	prefixRef    = "- "
	prefixActual = "+ "
)

// Lines returns the ndiff of ref against actual, each line prefixed by indent.
// The result is empty when both inputs are equal.
func Lines(ref, actual []byte, indent string) string {
	if bytes.Equal(ref, actual) {
		return ""
	}

	a := splitLines(string(ref))
	b := splitLines(string(actual))

	var sb strings.Builder
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'e':
			writeLines(&sb, indent, prefixEqual, a[op.I1:op.I2])
		case 'd':
			writeLines(&sb, indent, prefixRef, a[op.I1:op.I2])
		case 'i':
			writeLines(&sb, indent, prefixActual, b[op.J1:op.J2])
		case 'r':
			writeLines(&sb, indent, prefixRef, a[op.I1:op.I2])
			writeLines(&sb, indent, prefixActual, b[op.J1:op.J2])
		}
	}
	return sb.String()
}

// Files compares the reference file with the actual file. It returns whether
// they are byte-identical and, if not, their line diff.
func Files(refPath, actualPath, indent string) (bool, string, error) {
	ref, err := os.ReadFile(refPath)
	if err != nil {
		return false, "", fmt.Errorf("read reference: %w", err)
	}
	actual, err := os.ReadFile(actualPath)
	if err != nil {
		return false, "", fmt.Errorf("read output: %w", err)
	}
	if bytes.Equal(ref, actual) {
		return true, "", nil
	}
	return false, Lines(ref, actual, indent), nil
}

// splitLines splits s after every newline. Unlike difflib.SplitLines it does
// not invent a trailing line for input ending in a newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// noNewline follows a final line that lacks its line feed, as in unified diffs.
const noNewline = "\\ No newline at end of file\n"

func writeLines(sb *strings.Builder, indent, prefix string, lines []string) {
	for _, line := range lines {
		sb.WriteString(indent)
		sb.WriteString(prefix)
		sb.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(noNewline)
		}
	}
}
