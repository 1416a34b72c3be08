// Package vm - error handling with stack traces
package vm

import (
	"fmt"
	"strings"
)

// TraceFrame records where one active call was executing when a runtime
// error was raised. An empty Function means the top-level script.
type TraceFrame struct {
	Line     int
	Function string
}

// RuntimeError represents a runtime error with stack trace information.
// The trace lists frames from the innermost call outward.
type RuntimeError struct {
	Message string
	Trace   []TraceFrame
}

// Error implements the error interface. The format matches what the
// interpreter prints on stderr:
//
//	Undefined variable 'foo'.
//	[line 3] in inner()
//	[line 9] in script
func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	for _, frame := range e.Trace {
		b.WriteByte('\n')
		if frame.Function == "" {
			b.WriteString(fmt.Sprintf("[line %d] in script", frame.Line))
		} else {
			b.WriteString(fmt.Sprintf("[line %d] in %s()", frame.Line, frame.Function))
		}
	}

	return b.String()
}
