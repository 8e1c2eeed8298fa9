package internal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config value to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled lines to a console writer and, optionally, appends
// them to a log file. Safe for concurrent use.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	f     *os.File
	level Level
}

// NewLogger logs to out at level; a non-empty path also appends to that file.
func NewLogger(out io.Writer, level Level, path string) (*Logger, error) {
	l := &Logger{out: out, level: level}
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.f = f
	}
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{out: io.Discard, level: LevelError + 1}
}

func (l *Logger) Log(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	line := fmt.Sprintf("[%s] [%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), level, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out != nil {
		_, _ = io.WriteString(l.out, line)
	}
	if l.f != nil {
		_, _ = io.WriteString(l.f, line)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.Log(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.Log(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.Log(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.Log(LevelError, format, args...) }

func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		err := l.f.Close()
		l.f = nil
		return err
	}
	return nil
}
