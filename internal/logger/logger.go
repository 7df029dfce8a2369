// Package logger writes --verbose diagnostics to stderr: the stage-by-stage
// conversion trace, NCBI requests, and configuration sources. Nothing is
// written unless verbose mode is on.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose turns verbose output on or off.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose output is on.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects verbose output. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
}

// Debug prints a debug message.
func Debug(format string, args ...any) { logf("DEBUG", format, args...) }

// Info prints an informational message.
func Info(format string, args ...any) { logf("INFO", format, args...) }

// Warn prints a warning.
func Warn(format string, args ...any) { logf("WARN", format, args...) }

// Section prints a section header.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Trace prints a conversion trace under a section header, one debug line
// per stage.
func Trace(name string, lines []string) {
	if !IsVerbose() || len(lines) == 0 {
		return
	}
	Section(name)
	for _, l := range lines {
		Debug("%s", l)
	}
}
