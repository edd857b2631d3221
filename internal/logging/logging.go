// =============================================================================
// shipcheck - Logging
// =============================================================================
//
// A small leveled logger shared by the engines and the CLI. The engines take
// the Logger interface so tests can run them silently or capture output.
//
// =============================================================================

package logging

import (
	"fmt"
	"io"
	"os"
)

// Logger is the logging interface consumed by the engines.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// StdLogger writes leveled lines to a writer. Debug lines are only written
// when Verbose is set.
type StdLogger struct {
	// Out is the destination writer. Defaults to stdout via New.
	Out io.Writer

	// Verbose enables debug output.
	Verbose bool
}

// New creates a StdLogger writing to stdout.
func New(verbose bool) *StdLogger {
	return &StdLogger{Out: os.Stdout, Verbose: verbose}
}

// Debug logs a debug-level message when verbose output is enabled.
func (l *StdLogger) Debug(msg string, args ...interface{}) {
	if !l.Verbose {
		return
	}
	fmt.Fprintf(l.Out, "[DEBUG] "+msg+"\n", args...)
}

// Info logs an informational message.
func (l *StdLogger) Info(msg string, args ...interface{}) {
	fmt.Fprintf(l.Out, "[INFO] "+msg+"\n", args...)
}

// Warn logs a warning.
func (l *StdLogger) Warn(msg string, args ...interface{}) {
	fmt.Fprintf(l.Out, "[WARN] "+msg+"\n", args...)
}

// Error logs an error.
func (l *StdLogger) Error(msg string, args ...interface{}) {
	fmt.Fprintf(l.Out, "[ERROR] "+msg+"\n", args...)
}

// Nop is a Logger that discards everything. Used by tests.
type Nop struct{}

// Debug implements Logger.
func (Nop) Debug(string, ...interface{}) {}

// Info implements Logger.
func (Nop) Info(string, ...interface{}) {}

// Warn implements Logger.
func (Nop) Warn(string, ...interface{}) {}

// Error implements Logger.
func (Nop) Error(string, ...interface{}) {}
