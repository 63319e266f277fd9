package suite

// Check identifies one of the comparisons performed after a case runs.
type Check string

const (
	CheckReturnCode Check = "return code"
	CheckStdout     Check = "standard output"
	CheckStderr     Check = "standard error"
	CheckExtra      Check = "extra tests"
)

// Failure describes a single failed check.
type Failure struct {
	Check   Check
	Message string
	// Diff holds a line diff (reference vs actual) for file comparisons.
	Diff string
}

// CaseResult captures the outcome of running one case.
type CaseResult struct {
	Number   int
	Title    string
	Passed   bool
	Failures []Failure
	// LogPath is set when a failure log was written.
	LogPath string
}

// Options tunes a suite run.
type Options struct {
	// Cleanup removes generated artifacts after a passing case.
	Cleanup bool
	// Recheck only runs cases that already have generated output.
	Recheck bool
}

// DefaultOptions returns the options used when no flag overrides them.
func DefaultOptions() Options {
	return Options{Cleanup: true}
}

// Plan selects the cases of a run. An empty Cases list means sequential
// discovery from 1 up to the first missing directory.
type Plan struct {
	Cases []int
}

// Explicit reports whether the plan lists its cases.
func (p Plan) Explicit() bool {
	return len(p.Cases) > 0
}

// Summary is the immutable outcome of a suite run.
type Summary struct {
	Passed  int
	Failed  []int
	Results []CaseResult
}

// Total returns the number of cases that ran.
func (s Summary) Total() int {
	return s.Passed + len(s.Failed)
}

// AllPassed reports whether no case failed.
func (s Summary) AllPassed() bool {
	return len(s.Failed) == 0
}
