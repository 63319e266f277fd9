package suite

import (
	"io"
	"time"
)

// Invocation describes one execution of the program under test.
type Invocation struct {
	// Args holds the program and its arguments.
	Args []string
	// Dir is the working directory, the suite root.
	Dir string
	// Stdin is nil when the case has no input file.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Exit captures how the program under test terminated.
type Exit struct {
	// Code is the exit status, or the negated signal number when the
	// process was killed by a signal.
	Code     int
	Duration time.Duration
}
