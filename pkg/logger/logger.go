package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
)

type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

var (
	mu           sync.RWMutex
	log          hclog.Logger
	currentLevel LogLevel
)

func init() {
	currentLevel = parseLevel(os.Getenv("IMPOSTER_LOG_LEVEL"))
	log = newLogger(os.Stdout, currentLevel)
}

func newLogger(out io.Writer, level LogLevel) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       "imposter",
		Level:      toHclogLevel(level),
		Output:     out,
		JSONFormat: strings.EqualFold(os.Getenv("IMPOSTER_LOG_FORMAT"), "json"),
	})
}

func parseLevel(lvl string) LogLevel {
	switch strings.ToUpper(lvl) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return DEBUG
	}
}

func toHclogLevel(level LogLevel) hclog.Level {
	switch level {
	case TRACE:
		return hclog.Trace
	case INFO:
		return hclog.Info
	case WARN:
		return hclog.Warn
	case ERROR:
		return hclog.Error
	default:
		return hclog.Debug
	}
}

// SetLevel changes the current level from its name, e.g. "INFO".
// Unknown names fall back to DEBUG.
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = parseLevel(lvl)
	log.SetLevel(toHclogLevel(currentLevel))
}

// SetOutput redirects all log output, mostly useful in tests.
func SetOutput(out io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(out, currentLevel)
}

// Named returns the underlying structured logger with a sub-name, for components
// that want key/value pairs rather than formatted messages.
func Named(name string) hclog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log.Named(name)
}

func current() (hclog.Logger, LogLevel) {
	mu.RLock()
	defer mu.RUnlock()
	return log, currentLevel
}

// Level check functions
func IsTraceEnabled() bool {
	_, lvl := current()
	return lvl <= TRACE
}

func IsDebugEnabled() bool {
	_, lvl := current()
	return lvl <= DEBUG
}

func IsInfoEnabled() bool {
	_, lvl := current()
	return lvl <= INFO
}

func IsWarnEnabled() bool {
	_, lvl := current()
	return lvl <= WARN
}

func IsErrorEnabled() bool {
	_, lvl := current()
	return lvl <= ERROR
}

// Trace level logging
func Tracef(format string, v ...interface{}) {
	if l, lvl := current(); lvl <= TRACE {
		l.Trace(fmt.Sprintf(format, v...))
	}
}

func Traceln(msg string) {
	if l, lvl := current(); lvl <= TRACE {
		l.Trace(msg)
	}
}

// Debug level logging
func Debugf(format string, v ...interface{}) {
	if l, lvl := current(); lvl <= DEBUG {
		l.Debug(fmt.Sprintf(format, v...))
	}
}

func Debugln(msg string) {
	if l, lvl := current(); lvl <= DEBUG {
		l.Debug(msg)
	}
}

// Info level logging
func Infof(format string, v ...interface{}) {
	if l, lvl := current(); lvl <= INFO {
		l.Info(fmt.Sprintf(format, v...))
	}
}

func Infoln(msg string) {
	if l, lvl := current(); lvl <= INFO {
		l.Info(msg)
	}
}

// Warn level logging
func Warnf(format string, v ...interface{}) {
	if l, lvl := current(); lvl <= WARN {
		l.Warn(fmt.Sprintf(format, v...))
	}
}

func Warnln(msg string) {
	if l, lvl := current(); lvl <= WARN {
		l.Warn(msg)
	}
}

// Error level logging
func Errorf(format string, v ...interface{}) {
	if l, lvl := current(); lvl <= ERROR {
		l.Error(fmt.Sprintf(format, v...))
	}
}

func Errorln(msg string) {
	if l, lvl := current(); lvl <= ERROR {
		l.Error(msg)
	}
}

// GetCurrentLevel returns the current log level
func GetCurrentLevel() LogLevel {
	_, lvl := current()
	return lvl
}
