package ports

import "testsuite/internal/domain/suite"

// Reporter renders suite progress for a human.
type Reporter interface {
	CaseStarted(number int, title string)
	CasePassed(number int)
	CaseFailed(result suite.CaseResult)
	SuiteFinished(summary suite.Summary)
}
