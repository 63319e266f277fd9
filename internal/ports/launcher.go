package ports

import (
	"context"

	"testsuite/internal/domain/suite"
)

// Launcher executes the program under test and waits for it to exit.
//
// A non-zero exit is reported through suite.Exit, not as an error. Errors are
// reserved for failures to start or supervise the program.
type Launcher interface {
	Launch(ctx context.Context, inv suite.Invocation) (suite.Exit, error)
	Close() error
}
