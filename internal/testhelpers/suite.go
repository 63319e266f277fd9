// Package testhelpers builds suite directories on disk for tests.
package testhelpers

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// Suite is a suite root under a temporary directory.
type Suite struct {
	t    testing.TB
	Root string
}

// NewSuite creates an empty suite root that is removed when the test ends.
func NewSuite(t testing.TB) *Suite {
	t.Helper()
	return &Suite{t: t, Root: t.TempDir()}
}

// File writes a root-level file.
func (s *Suite) File(name, content string) *Suite {
	s.t.Helper()
	s.write(filepath.Join(s.Root, name), content, 0o644)
	return s
}

// Script writes an executable root-level shell script.
func (s *Suite) Script(name, body string) *Suite {
	s.t.Helper()
	s.write(filepath.Join(s.Root, name), "#!/bin/sh\n"+body, 0o755)
	return s
}

// Case returns a builder for case directory n, creating it.
func (s *Suite) Case(n int) *Case {
	s.t.Helper()
	dir := filepath.Join(s.Root, strconv.Itoa(n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.t.Fatalf("create case %d: %v", n, err)
	}
	return &Case{suite: s, Dir: dir}
}

// Path joins elem onto the suite root.
func (s *Suite) Path(elem ...string) string {
	return filepath.Join(append([]string{s.Root}, elem...)...)
}

// Exists reports whether the file at the root-relative path exists.
func (s *Suite) Exists(elem ...string) bool {
	_, err := os.Stat(s.Path(elem...))
	return err == nil
}

// Read returns the content of a root-relative file, failing the test if it is
// missing.
func (s *Suite) Read(elem ...string) string {
	s.t.Helper()
	data, err := os.ReadFile(s.Path(elem...))
	if err != nil {
		s.t.Fatalf("read %s: %v", filepath.Join(elem...), err)
	}
	return string(data)
}

func (s *Suite) write(path, content string, mode os.FileMode) {
	s.t.Helper()
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		s.t.Fatalf("write %s: %v", path, err)
	}
}

// Case builds the files of one case directory.
type Case struct {
	suite *Suite
	Dir   string
}

// File writes name inside the case directory.
func (c *Case) File(name, content string) *Case {
	c.suite.t.Helper()
	c.suite.write(filepath.Join(c.Dir, name), content, 0o644)
	return c
}

// Script writes an executable shell script inside the case directory.
func (c *Case) Script(name, body string) *Case {
	c.suite.t.Helper()
	c.suite.write(filepath.Join(c.Dir, name), "#!/bin/sh\n"+body, 0o755)
	return c
}
