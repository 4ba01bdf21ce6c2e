// Package log is a small structured logger in the kratos style: a
// Logger interface, a level Filter, and a Helper with printf-style
// convenience methods (NewStdLogger, NewFilter, FilterLevel, NewHelper,
// Helper.Errorf/Warnf/Debugf/Infof/Warn/Debug).
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is a log severity, ordered least to most severe.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
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
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every log call is routed through.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

// stdLogger writes "time level msg" lines to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (s *stdLogger) Log(level Level, keyvals ...interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := fmt.Sprintf("%s level=%s", time.Now().Format(time.RFC3339), level)
	for i := 0; i < len(keyvals); i += 2 {
		if i+1 < len(keyvals) {
			buf += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
		} else {
			buf += fmt.Sprintf(" %v", keyvals[i])
		}
	}
	_, err := fmt.Fprintln(s.w, buf)
	return err
}

// FilterOption configures a Filter.
type FilterOption func(*Filter)

// FilterLevel drops any record below the given level.
func FilterLevel(level Level) FilterOption {
	return func(f *Filter) { f.level = level }
}

// Filter wraps a Logger and drops records under its configured level.
type Filter struct {
	logger Logger
	level  Level
}

// NewFilter returns a Logger that only forwards records at or above the
// configured level (LevelDebug, i.e. everything, by default).
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &Filter{logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Filter) Log(level Level, keyvals ...interface{}) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper adds printf-style convenience methods over a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with printf-style helpers.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, a ...interface{}) {
	_ = h.logger.Log(level, "msg", fmt.Sprint(a...))
}

func (h *Helper) logf(level Level, format string, a ...interface{}) {
	_ = h.logger.Log(level, "msg", fmt.Sprintf(format, a...))
}

func (h *Helper) Debug(a ...interface{})                 { h.log(LevelDebug, a...) }
func (h *Helper) Debugf(format string, a ...interface{}) { h.logf(LevelDebug, format, a...) }
func (h *Helper) Info(a ...interface{})                  { h.log(LevelInfo, a...) }
func (h *Helper) Infof(format string, a ...interface{})  { h.logf(LevelInfo, format, a...) }
func (h *Helper) Warn(a ...interface{})                  { h.log(LevelWarn, a...) }
func (h *Helper) Warnf(format string, a ...interface{})  { h.logf(LevelWarn, format, a...) }
func (h *Helper) Error(a ...interface{})                 { h.log(LevelError, a...) }
func (h *Helper) Errorf(format string, a ...interface{}) { h.logf(LevelError, format, a...) }

// Fatal logs at LevelFatal and terminates the process. Nothing in this
// module calls it; cmd/gerbcore exits through the standard log package
// (spec: "the parser never calls exit").
func (h *Helper) Fatal(a ...interface{}) {
	h.log(LevelFatal, a...)
	os.Exit(1)
}

func (h *Helper) Fatalf(format string, a ...interface{}) {
	h.logf(LevelFatal, format, a...)
	os.Exit(1)
}

// Default is a package-level helper over a stdout logger filtered to
// LevelError, used when an Options.Logger is left unset.
var Default = NewHelper(NewFilter(NewStdLogger(os.Stdout), FilterLevel(LevelError)))
