package suite

import (
	"os"
	"path/filepath"
	"strconv"
)

// Per-case file names.
const (
	FileTitle   = "title"
	FileProgram = "program"
	FileArgs    = "test"
	FileStdin   = "in"
	FilePre     = "pre"
	FilePost    = "post"
	FileFail    = "fail"
	FileCheck   = "check"
	FileRet     = "ret"
	FileOut     = "out"
	FileErr     = "err"
	FileLog     = "log"

	// RefSuffix turns a generated artifact name into its reference file name.
	RefSuffix = ".ref"
)

// Suite-level file names, relative to the suite root.
const (
	SuiteProgram = "test.program"
	SuitePre     = "test.pre"
	SuitePost    = "test.post"
	SuiteConfig  = "test.toml"
	SuiteLog     = "testsuite.log"
)

// Artifacts lists the files generated by a case run, in comparison order.
var Artifacts = []string{FileRet, FileOut, FileErr}

// Layout resolves suite and case paths under a root directory.
type Layout struct {
	Root string
}

// CaseDir returns the directory of case n.
func (l Layout) CaseDir(n int) string {
	return filepath.Join(l.Root, strconv.Itoa(n))
}

// CaseFile returns the path of name inside case n.
func (l Layout) CaseFile(n int, name string) string {
	return filepath.Join(l.CaseDir(n), name)
}

// RefFile returns the reference file for a generated artifact of case n.
func (l Layout) RefFile(n int, artifact string) string {
	return l.CaseFile(n, artifact+RefSuffix)
}

// RelCaseFile returns name inside case n relative to the root, prefixed with
// "./" so a shell resolves it as a path rather than through $PATH.
func (l Layout) RelCaseFile(n int, name string) string {
	return "./" + filepath.ToSlash(filepath.Join(strconv.Itoa(n), name))
}

// SuiteFile returns the path of a suite-level file.
func (l Layout) SuiteFile(name string) string {
	return filepath.Join(l.Root, name)
}

// HasCase reports whether the directory of case n exists.
func (l Layout) HasCase(n int) bool {
	info, err := os.Stat(l.CaseDir(n))
	return err == nil && info.IsDir()
}

// Discover returns the contiguous run of case numbers starting at 1.
func (l Layout) Discover() []int {
	var cases []int
	for n := 1; l.HasCase(n); n++ {
		cases = append(cases, n)
	}
	return cases
}

// IsFile reports whether path names an existing regular file.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
