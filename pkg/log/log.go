package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger *Logger
	defaultLock   sync.RWMutex
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defaultLogger = New(os.Stdout, LogLevelDebug)
}

type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

func (level LogLevel) String() string {
	switch level {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	case LogLevelTrace:
		return "trace"
	default:
		return "unknown"
	}
}

func (level LogLevel) zerolog() zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// ParseLogLevel parses a log level string into a LogLevel.
// Valid log levels are: error, warn, info, debug, trace.
func ParseLogLevel(level string) (LogLevel, error) {
	switch level {
	case "error":
		return LogLevelError, nil
	case "warn":
		return LogLevelWarn, nil
	case "info":
		return LogLevelInfo, nil
	case "debug":
		return LogLevelDebug, nil
	case "trace":
		return LogLevelTrace, nil
	default:
		return LogLevelError, fmt.Errorf("unknown log level: %s", level)
	}
}

// SetDefaultLogger replaces the logger used by the package-level functions.
func SetDefaultLogger(logger *Logger) {
	defaultLock.Lock()
	defer defaultLock.Unlock()
	defaultLogger = logger
}

func SetLevel(level LogLevel) {
	getDefault().SetLevel(level)
	Info("Log level set to %s", level)
}

// Default returns the logger used by the package-level functions.
func Default() *Logger {
	return getDefault()
}

func getDefault() *Logger {
	defaultLock.RLock()
	defer defaultLock.RUnlock()
	return defaultLogger
}

// Logger writes one JSON object per line with "level", "time" and "message" keys.
type Logger struct {
	lock   sync.RWMutex
	logger zerolog.Logger
	level  LogLevel
}

func New(out io.Writer, level LogLevel) *Logger {
	zl := zerolog.New(out).With().Timestamp().Logger()
	return &Logger{
		logger: zl.Level(level.zerolog()),
		level:  level,
	}
}

// With returns a child logger that adds the given key to every entry.
func (l *Logger) With(key string, value interface{}) *Logger {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
		level:  l.level,
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.level = level
	l.logger = l.logger.Level(level.zerolog())
}

func (l *Logger) Level() LogLevel {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.level
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	l.lock.RLock()
	zl := l.logger
	enabled := level <= l.level
	l.lock.RUnlock()
	if !enabled {
		return
	}
	zl.WithLevel(level.zerolog()).Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LogLevelError, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(LogLevelWarn, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LogLevelInfo, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LogLevelDebug, format, args...)
}

func (l *Logger) Trace(format string, args ...interface{}) {
	l.logf(LogLevelTrace, format, args...)
}

func Info(format string, args ...interface{}) {
	getDefault().Info(format, args...)
}

func Error(format string, args ...interface{}) {
	getDefault().Error(format, args...)
}

func Warn(format string, args ...interface{}) {
	getDefault().Warn(format, args...)
}

func Debug(format string, args ...interface{}) {
	getDefault().Debug(format, args...)
}

func Trace(format string, args ...interface{}) {
	getDefault().Trace(format, args...)
}
