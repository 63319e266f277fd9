package ports

import "context"

// ScriptRunner executes hook and check scripts.
type ScriptRunner interface {
	// RunScript runs the executable at path (relative to dir) from dir and
	// returns its exit status.
	RunScript(ctx context.Context, dir, path string) (int, error)
}
