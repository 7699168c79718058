package helper

import (
	"fmt"
	"runtime"
	"strings"
)

// Error wraps an error with the step it failed in and the calling function.
type Error struct {
	Original error
	Trace    string
	Function string
}

// NewError wraps err with a short description of the failed step.
// It returns nil when err is nil.
func NewError(trace string, err error) error {
	if err == nil {
		return nil
	}

	function := "unknown"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			function = fn.Name()[strings.LastIndex(fn.Name(), "/")+1:]
		}
	}

	return &Error{
		Original: err,
		Trace:    trace,
		Function: function,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Trace, e.Original)
}

// Unwrap returns the wrapped error so errors.Is and errors.As keep working.
func (e *Error) Unwrap() error {
	return e.Original
}
