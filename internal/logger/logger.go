// Package logger provides verbose logging for novelcheck.
// Debug, Info, Section and Timed output only appears when verbose mode is
// enabled via the --verbose flag. Warnings are always written, because they
// report degraded results (a corpus paper indexed without text, a skipped
// reference) the user should see.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// write formats a line while holding the lock so concurrent
// embedding workers never interleave partial lines.
func write(always bool, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if always || verbose {
		fmt.Fprintf(output, format, args...)
	}
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	write(false, "[DEBUG] "+format+"\n", args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	write(false, "\n=== %s ===\n", name)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	write(false, "[INFO] "+format+"\n", args...)
}

// Warn prints a warning message regardless of verbose mode.
func Warn(format string, args ...any) {
	write(true, "[WARN] "+format+"\n", args...)
}

// Timed logs how long a step took when the returned func is called.
//
//	defer logger.Timed("embed corpus")()
func Timed(step string) func() {
	start := now()
	return func() {
		write(false, "[DEBUG] %s took %s\n", step, now().Sub(start).Round(time.Millisecond))
	}
}
