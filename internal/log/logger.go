// Package log provides a global logger with configurable logging level. Components log through a
// [Tag] so that interleaved output from several profiles can be told apart.

package log

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
	LevelNone    Level = iota // Disables logging.
	LevelError                // Logs anomalies that are not expected to occur during normal use.
	LevelWarning              // Logs anomalies that are expected to occur occasionally, such as link loss.
	LevelInfo                 // Logs connection lifecycle events.
	LevelDebug                // Logs every GATT operation and event.
)

var (
	globalLogLevel Level
	output         io.Writer = os.Stderr
	logMutex       sync.Mutex
)

var labels = map[Level]string{
	LevelDebug:   "[debug]",
	LevelInfo:    "[info ]",
	LevelWarning: "[warn ]",
	LevelError:   "[error]",
}

var levelNames = map[string]Level{
	"none":    LevelNone,
	"error":   LevelError,
	"warn":    LevelWarning,
	"warning": LevelWarning,
	"info":    LevelInfo,
	"debug":   LevelDebug,
}

// ParseLevel converts a level name such as "debug" or "warn" into a Level.
func ParseLevel(name string) (Level, error) {
	if level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return level, nil
	}
	return LevelNone, fmt.Errorf("unknown log level '%s'", name)
}

func (l Level) String() string {
	for name, level := range levelNames {
		if level == l && name != "warning" {
			return name
		}
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

func SetLevel(level Level) {
	logMutex.Lock()
	defer logMutex.Unlock()
	globalLogLevel = level
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
}

func logLevel() Level {
	logMutex.Lock()
	defer logMutex.Unlock()
	return globalLogLevel
}

func log(level Level, tag Tag, format string, a ...interface{}) {
	if level > logLevel() {
		return
	}
	msg := fmt.Sprintf("%s %s ", time.Now().Format(time.RFC3339), labels[level])
	if tag != "" {
		msg += "[" + string(tag) + "] "
	}
	msg += fmt.Sprintf(format, a...)

	logMutex.Lock()
	defer logMutex.Unlock()
	fmt.Fprintln(output, msg)
}

func Debug(format string, a ...interface{}) {
	log(LevelDebug, "", format, a...)
}
func Info(format string, a ...interface{}) {
	log(LevelInfo, "", format, a...)
}
func Warning(format string, a ...interface{}) {
	log(LevelWarning, "", format, a...)
}
func Error(format string, a ...interface{}) {
	log(LevelError, "", format, a...)
}

// Tag names the component a message originates from.
type Tag string

func (t Tag) Debug(format string, a ...interface{}) {
	log(LevelDebug, t, format, a...)
}
func (t Tag) Info(format string, a ...interface{}) {
	log(LevelInfo, t, format, a...)
}
func (t Tag) Warning(format string, a ...interface{}) {
	log(LevelWarning, t, format, a...)
}
func (t Tag) Error(format string, a ...interface{}) {
	log(LevelError, t, format, a...)
}
