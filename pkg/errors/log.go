package errors

import (
	"fmt"
	"os"
)

// LogHandler is a Handler that logs to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Trace enables trace output. Panics are always logged.
	Trace bool
}

// HandlePanic logs a PanicError to stderr.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Op != "" {
		fmt.Fprintf(os.Stderr, "[arbor panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(os.Stderr, "[arbor panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", err.StackTrace)
	}
}

// HandleTrace logs a trace line to stderr when Trace is enabled.
func (h *LogHandler) HandleTrace(op, msg string) {
	if !h.Trace {
		return
	}
	fmt.Fprintf(os.Stderr, "[arbor trace] %s: %s\n", op, msg)
}
