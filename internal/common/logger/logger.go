package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AlibekovAA/recipebook/backend/internal/common/constants"
)

type Fields map[string]interface{}

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

var levelNames = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARNING:  "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

type Logger struct {
	mu          sync.RWMutex
	level       LogLevel
	out         *log.Logger
	serviceName string
	closer      io.Closer
}

// New builds a logger writing to stdout and, when logDir is not empty, to a
// rotating app.log inside logDir.
func New(logDir, serviceName, level string) (*Logger, error) {
	l := &Logger{
		level:       parseLevel(level),
		serviceName: serviceName,
	}

	if logDir == "" {
		l.out = log.New(os.Stdout, "", log.LstdFlags)
		return l, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "app.log"),
		MaxSize:    constants.LoggerMaxSize,
		MaxBackups: constants.LoggerMaxBackups,
		MaxAge:     constants.LoggerMaxAge,
		Compress:   true,
	}

	l.out = log.New(io.MultiWriter(os.Stdout, fileWriter), "", log.LstdFlags)
	l.closer = fileWriter
	return l, nil
}

// NewWithWriter is used by tests to capture output.
func NewWithWriter(w io.Writer, serviceName, level string) *Logger {
	return &Logger{
		level:       parseLevel(level),
		out:         log.New(w, "", 0),
		serviceName: serviceName,
	}
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) ShouldLog(level LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return level >= l.level
}

func (l *Logger) SetLevel(level string) {
	l.mu.Lock()
	l.level = parseLevel(level)
	l.mu.Unlock()
}

func (l *Logger) write(depth int, level LogLevel, ctx context.Context, msg string, fields Fields) {
	l.mu.RLock()
	currentLevel := l.level
	service := l.serviceName
	l.mu.RUnlock()

	if level < currentLevel {
		return
	}

	prefix := fmt.Sprintf("[%s]", levelNames[level])
	if service != "" {
		prefix = fmt.Sprintf("[%s] [%s]", levelNames[level], service)
	}

	var parts []string
	if ctx != nil {
		if traceID, ok := ctx.Value(constants.TraceIDKey).(string); ok && traceID != "" {
			parts = append(parts, "trace_id="+traceID)
		}
	}

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
	}

	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", prefix, strings.Join(parts, " "))
	}

	_, file, line, ok := runtime.Caller(depth)
	if !ok {
		file = "unknown"
		line = 0
	} else {
		file = filepath.Base(file)
	}

	_ = l.out.Output(0, fmt.Sprintf("%s %s:%d %s", prefix, file, line, msg))
}

func (l *Logger) logf(level LogLevel, format string, args ...any) {
	l.write(3, level, nil, fmt.Sprintf(format, args...), nil)
}

func (l *Logger) Debug(msg string)    { l.write(2, DEBUG, nil, msg, nil) }
func (l *Logger) Info(msg string)     { l.write(2, INFO, nil, msg, nil) }
func (l *Logger) Warn(msg string)     { l.write(2, WARNING, nil, msg, nil) }
func (l *Logger) Error(msg string)    { l.write(2, ERROR, nil, msg, nil) }
func (l *Logger) Critical(msg string) { l.write(2, CRITICAL, nil, msg, nil) }

func (l *Logger) Debugf(format string, args ...any)    { l.logf(DEBUG, format, args...) }
func (l *Logger) Infof(format string, args ...any)     { l.logf(INFO, format, args...) }
func (l *Logger) Warnf(format string, args ...any)     { l.logf(WARNING, format, args...) }
func (l *Logger) Errorf(format string, args ...any)    { l.logf(ERROR, format, args...) }
func (l *Logger) Criticalf(format string, args ...any) { l.logf(CRITICAL, format, args...) }

func (l *Logger) Fatalf(format string, args ...any) {
	l.logf(CRITICAL, format, args...)
	os.Exit(1)
}

func (l *Logger) WithFields(ctx context.Context, fields Fields) *Entry {
	return &Entry{
		logger: l,
		ctx:    ctx,
		fields: fields,
	}
}

type Entry struct {
	logger *Logger
	ctx    context.Context
	fields Fields
}

func (e *Entry) entryf(level LogLevel, format string, args ...any) {
	e.logger.write(3, level, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Debug(msg string) { e.logger.write(2, DEBUG, e.ctx, msg, e.fields) }
func (e *Entry) Info(msg string)  { e.logger.write(2, INFO, e.ctx, msg, e.fields) }
func (e *Entry) Warn(msg string)  { e.logger.write(2, WARNING, e.ctx, msg, e.fields) }
func (e *Entry) Error(msg string) { e.logger.write(2, ERROR, e.ctx, msg, e.fields) }

func (e *Entry) Debugf(format string, args ...any) { e.entryf(DEBUG, format, args...) }
func (e *Entry) Infof(format string, args ...any)  { e.entryf(INFO, format, args...) }
func (e *Entry) Warnf(format string, args ...any)  { e.entryf(WARNING, format, args...) }
func (e *Entry) Errorf(format string, args ...any) { e.entryf(ERROR, format, args...) }

func parseLevel(value string) LogLevel {
	switch strings.TrimSpace(strings.ToUpper(value)) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "CRITICAL":
		return CRITICAL
	default:
		return INFO
	}
}
