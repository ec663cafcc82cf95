package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is a leveled line logger. Debug output is only written when verbose.
type Logger struct {
	out     *log.Logger
	verbose bool
	mu      sync.Mutex
}

// NewLogger creates a logger writing to stderr
func NewLogger(verbose bool) *Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

// NewLoggerTo creates a logger writing to w
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{
		out:     log.New(w, "", log.LstdFlags),
		verbose: verbose,
	}
}

// NopLogger discards everything
func NopLogger() *Logger {
	return NewLoggerTo(io.Discard, false)
}

// SetVerbose toggles debug output
func (l *Logger) SetVerbose(v bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose = v
}

func (l *Logger) Debug(format string, args ...any) {
	l.mu.Lock()
	verbose := l.verbose
	l.mu.Unlock()
	if verbose {
		l.write("DEBUG", format, args...)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.write("INFO ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write("WARN ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.write("ERROR", format, args...)
}

func (l *Logger) write(level, format string, args ...any) {
	l.out.Printf("%s %s", level, fmt.Sprintf(format, args...))
}

// Print logs at info level. It lets the logger back chi's request logger.
func (l *Logger) Print(v ...any) {
	l.write("INFO ", "%s", fmt.Sprint(v...))
}
