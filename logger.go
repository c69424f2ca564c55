package mbus

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel defines the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelNone // disables logging
)

var levelToString = map[LogLevel]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
	LevelNone:    "NONE",
}

var stringToLevel = map[string]LogLevel{
	"DEBUG":   LevelDebug,
	"INFO":    LevelInfo,
	"WARNING": LevelWarning,
	"ERROR":   LevelError,
	"NONE":    LevelNone,
}

// SimpleLogger is a leveled io.Writer suitable for Client.SetLogger and
// Transport.SetLogger. Messages below the configured level are dropped.
type SimpleLogger struct {
	mu         sync.Mutex
	level      LogLevel
	output     io.Writer
	timeFormat string
	prefix     string
}

// NewSimpleLogger creates a SimpleLogger. A nil output defaults to
// os.Stderr.
func NewSimpleLogger(output io.Writer, level LogLevel, prefix string) *SimpleLogger {
	if output == nil {
		output = os.Stderr
	}
	return &SimpleLogger{
		level:      level,
		output:     output,
		timeFormat: time.RFC3339,
		prefix:     prefix,
	}
}

// SetLevel sets the logging level.
func (l *SimpleLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current logging level.
func (l *SimpleLogger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevelFromString sets the logging level from its name, e.g. "DEBUG".
func (l *SimpleLogger) SetLevelFromString(levelStr string) error {
	if level, ok := stringToLevel[strings.ToUpper(levelStr)]; ok {
		l.SetLevel(level)
		return nil
	}
	return fmt.Errorf("mbus: invalid log level: %s", levelStr)
}

// Write implements io.Writer. The message's level is inferred from a
// leading "[DEBUG]"-style tag; untagged messages count as debug, since the
// transport's raw byte dumps are the usual traffic here.
func (l *SimpleLogger) Write(p []byte) (int, error) {
	message := string(p)
	level := determineLevel(message)

	if level < l.GetLevel() || l.GetLevel() == LevelNone {
		return len(p), nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format(l.timeFormat)
	formatted := fmt.Sprintf("%s [%s] <%s> %s\n", timestamp, levelToString[level], l.prefix, strings.TrimSpace(message))
	if _, err := l.output.Write([]byte(formatted)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func determineLevel(message string) LogLevel {
	upper := strings.ToUpper(message)
	switch {
	case strings.HasPrefix(upper, "[ERROR]"), strings.HasPrefix(upper, "ERROR:"):
		return LevelError
	case strings.HasPrefix(upper, "[WARNING]"), strings.HasPrefix(upper, "WARN:"):
		return LevelWarning
	case strings.HasPrefix(upper, "[INFO]"), strings.HasPrefix(upper, "INFO:"):
		return LevelInfo
	}
	return LevelDebug
}
