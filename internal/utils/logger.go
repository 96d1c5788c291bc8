package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger appends timestamped lines to a log file. When no file could be
// opened it falls back to stderr so messages are never dropped silently.
type Logger struct {
	file *os.File
}

// NewLogger opens the given path for appending, creating parent directories
// as needed. An empty path yields a stderr-only logger.
func NewLogger(path string) *Logger {
	l := &Logger{}
	if path == "" {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create log directory for %s: %v\n", path, err)
		return l
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot open %s: %v\n", path, err)
		return l
	}
	l.file = file
	return l
}

// Write appends one timestamped message.
func (l *Logger) Write(message string) {
	line := fmt.Sprintf("%s: %s\n", time.Now().Format("2006-01-02 15:04:05"), message)
	if l == nil || l.file == nil {
		fmt.Fprint(os.Stderr, line)
		return
	}
	l.file.WriteString(line)
}

// Writef formats and appends one timestamped message.
func (l *Logger) Writef(format string, args ...interface{}) {
	l.Write(fmt.Sprintf(format, args...))
}

// File returns the underlying write handle when available.
func (l *Logger) File() *os.File {
	if l == nil {
		return nil
	}
	return l.file
}

// Close flushes and closes the underlying file handle.
func (l *Logger) Close() {
	if l == nil || l.file == nil {
		return
	}
	l.file.Sync()
	l.file.Close()
}
