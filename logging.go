package main

import (
	"io"
	"os"
	"path/filepath"
	str "strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const logQueueSize = 256

// LogRequest represents a single logging request
type LogRequest struct {
	Message   string
	Fields    map[string]any // snapshot of caller fields
	Level     int            // RFC 5424 log level (0-7)
	Timestamp time.Time      // when request was made
}

// Logger queues requests for a single worker which writes them through
// zerolog. the zero value is not usable; see NewLogger and discardLogger.
type Logger struct {
	zl       zerolog.Logger
	minLevel int
	closer   io.Closer

	queue           chan LogRequest
	running         bool
	queueFullWarned bool
	mu              sync.Mutex
	done            sync.WaitGroup
}

// logLevelToString converts log level number to string name
func logLevelToString(level int) string {
	switch level {
	case LOG_EMERG:
		return "emerg"
	case LOG_ALERT:
		return "alert"
	case LOG_CRIT:
		return "crit"
	case LOG_ERR:
		return "error"
	case LOG_WARNING:
		return "warn"
	case LOG_NOTICE:
		return "notice"
	case LOG_INFO:
		return "info"
	case LOG_DEBUG:
		return "debug"
	default:
		return "unknown"
	}
}

// parseLogLevel accepts a level name as printed by logLevelToString.
func parseLogLevel(name string) (int, error) {
	for l := LOG_EMERG; l <= LOG_DEBUG; l++ {
		if str.EqualFold(name, logLevelToString(l)) {
			return l, nil
		}
	}
	if str.EqualFold(name, "warning") {
		return LOG_WARNING, nil
	}
	return 0, fef("unknown log level '%s'", name)
}

// zerologLevel folds the eight syslog levels onto zerolog's.
func zerologLevel(level int) zerolog.Level {
	switch {
	case level <= LOG_CRIT:
		return zerolog.FatalLevel
	case level == LOG_ERR:
		return zerolog.ErrorLevel
	case level == LOG_WARNING:
		return zerolog.WarnLevel
	case level <= LOG_INFO:
		return zerolog.InfoLevel
	}
	return zerolog.DebugLevel
}

// NewLogger writes JSON lines, or console formatted text, to w.
func NewLogger(w io.Writer, json bool, minLevel int) *Logger {
	if !json {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return &Logger{
		zl:       zerolog.New(w),
		minLevel: minLevel,
	}
}

// OpenLogFile creates a logger appending to path.
func OpenLogFile(path string, json bool, minLevel int) (*Logger, error) {
	abs, err := validateLogFilePath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(abs, os.O_APPEND|os.O_CREATE|os.O_WRONLY, default_WriteMode)
	if err != nil {
		return nil, fef("cannot open log file: %w", err)
	}
	l := NewLogger(f, json, minLevel)
	l.closer = f
	return l, nil
}

// discardLogger drops everything and never starts a worker.
func discardLogger() *Logger {
	return &Logger{zl: zerolog.Nop(), minLevel: -1}
}

// startLogWorker starts the background logging worker
func (l *Logger) startLogWorker() {
	if l.running {
		return
	}
	l.queue = make(chan LogRequest, logQueueSize)
	l.running = true
	l.queueFullWarned = false
	l.done.Add(1)
	go func(q chan LogRequest) {
		defer l.done.Done()
		for request := range q {
			l.processLogRequest(request)
		}
	}(l.queue)
}

// Close drains the queue and stops the worker.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.running {
		close(l.queue)
		l.running = false
	}
	l.mu.Unlock()
	l.done.Wait()
	if l.closer != nil {
		l.closer.Close()
		l.closer = nil
	}
}

// queueLogRequest hands a request to the worker, waiting briefly when the
// queue is full before blocking.
func (l *Logger) queueLogRequest(request LogRequest) {
	if request.Level > l.minLevel {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.startLogWorker()

	select {
	case l.queue <- request:
		l.queueFullWarned = false
	case <-time.After(100 * time.Millisecond):
		if !l.queueFullWarned {
			l.queueFullWarned = true
			l.zl.Warn().Int("size", logQueueSize).Msg("logging queue full")
		}
		l.queue <- request
	}
}

// processLogRequest handles a single log request
func (l *Logger) processLogRequest(request LogRequest) {
	ev := l.zl.WithLevel(zerologLevel(request.Level))
	if ev == nil {
		return
	}
	ev = ev.Time(zerolog.TimestampFieldName, request.Timestamp).Str("severity", logLevelToString(request.Level))
	for k, v := range request.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(request.Message)
}

func (l *Logger) log(level int, msg string, fields map[string]any) {
	if l == nil || level > l.minLevel {
		return
	}
	l.queueLogRequest(LogRequest{Message: msg, Fields: fields, Level: level, Timestamp: time.Now()})
}

func (l *Logger) Error(msg string, fields map[string]any)  { l.log(LOG_ERR, msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)   { l.log(LOG_WARNING, msg, fields) }
func (l *Logger) Notice(msg string, fields map[string]any) { l.log(LOG_NOTICE, msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)   { l.log(LOG_INFO, msg, fields) }
func (l *Logger) Debug(msg string, fields map[string]any)  { l.log(LOG_DEBUG, msg, fields) }

// validateLogFilePath expands ~ and checks the target directory is usable.
func validateLogFilePath(path string) (string, error) {
	if str.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fef("cannot expand ~ in path: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fef("invalid path: %w", err)
	}
	info, err := os.Stat(filepath.Dir(abs))
	if err != nil {
		return "", fef("log directory: %w", err)
	}
	if !info.IsDir() {
		return "", fef("%s is not a directory", filepath.Dir(abs))
	}
	return abs, nil
}
