// Package logger provides process-wide structured logging for sercha-kb.
//
// Messages are printf-style and written through log/slog. Debug output and
// pipeline section headers only appear in verbose mode; the quiet level
// applies otherwise (warnings for CLI commands, info for servers).
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

var (
	mu         sync.RWMutex
	verbose    bool
	quietLevel = slog.LevelWarn
	output     io.Writer = os.Stderr
	level      = new(slog.LevelVar)
	log        = newLogger(output)
)

func init() {
	level.Set(quietLevel)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	applyLevel()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetQuietLevel sets the minimum level logged when verbose mode is off.
// Long-running servers lower it to Info.
func SetQuietLevel(l slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	quietLevel = l
	applyLevel()
}

func applyLevel() {
	if verbose {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(quietLevel)
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log = newLogger(w)
}

// Slog returns the underlying structured logger for libraries that accept one.
func Slog() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	Slog().Debug(fmt.Sprintf(format, args...))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info logs an informational message.
func Info(format string, args ...any) {
	Slog().Info(fmt.Sprintf(format, args...))
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	Slog().Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...any) {
	Slog().Error(fmt.Sprintf(format, args...))
}
