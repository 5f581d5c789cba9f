package cliutil

import (
	"fmt"
	"time"
)

// Logger provides leveled logging for zmheap-inspect, printed directly
// rather than through a structured logging library since the tool's
// whole output is consumed by a human watching a terminal.
type Logger struct {
	Verbose   bool
	DebugMode bool
}

// NewLogger creates a Logger with the given verbosity toggles.
func NewLogger(verbose, debug bool) *Logger {
	return &Logger{Verbose: verbose, DebugMode: debug}
}

func (l *Logger) timestamp() string { return time.Now().Format("15:04:05") }

// Info logs a message when Verbose is set.
func (l *Logger) Info(format string, args ...any) {
	if l.Verbose {
		fmt.Printf("[INFO] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
	}
}

// Debug logs a message when DebugMode is set.
func (l *Logger) Debug(format string, args ...any) {
	if l.DebugMode {
		fmt.Printf("[DEBUG] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
	}
}

// Error logs a message unconditionally.
func (l *Logger) Error(format string, args ...any) {
	fmt.Printf("[ERROR] %s: %s\n", l.timestamp(), fmt.Sprintf(format, args...))
}
