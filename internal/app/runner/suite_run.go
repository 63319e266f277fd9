package runner

import "testsuite/internal/domain/suite"

// suiteRun accumulates the mutable state of one suite run. It is owned by the
// driver goroutine and frozen into a Summary by finalize.
type suiteRun struct {
	passed  int
	failed  []int
	results []suite.CaseResult
}

func newSuiteRun() *suiteRun {
	return &suiteRun{}
}

func (s *suiteRun) record(result suite.CaseResult) {
	s.results = append(s.results, result)
	if result.Passed {
		s.passed++
		return
	}
	s.failed = append(s.failed, result.Number)
}

func (s *suiteRun) finalize() suite.Summary {
	return suite.Summary{
		Passed:  s.passed,
		Failed:  append([]int(nil), s.failed...),
		Results: append([]suite.CaseResult(nil), s.results...),
	}
}
