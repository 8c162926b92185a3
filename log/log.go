// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package log provides the leveled logging sink used across
// DeepSea, built on top of log/slog the way cogentcore-core's
// base/errors package layers its Log helpers over slog.
package log

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
)

// Level mirrors the six severities from the original sink's
// function-pointer table.
type Level int

// Levels, in increasing severity.
const (
	Trace Level = iota
	Debug
	Info
	Warning
	Error
	Fatal
)

// String implements fmt.Stringer.
func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case Trace, Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Sink receives formatted log records.
// A sink with Func == nil is disabled, matching the source's
// rule that a logging function pointer left null turns the
// sink off.
type Sink struct {
	Func     func(level Level, tag, msg string, file string, line int)
	UserData any
}

var (
	mu   sync.Mutex
	sink = Sink{Func: defaultFunc}
)

// SetSink installs s as the process-wide log sink, replacing
// whatever was previously registered.
// It returns the sink that was replaced.
func SetSink(s Sink) Sink {
	mu.Lock()
	defer mu.Unlock()
	prev := sink
	sink = s
	return prev
}

var (
	outLogger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	errLogger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// defaultFunc writes levels below Warning to stdout and
// Warning and above to stderr, as spec.md §6 describes.
func defaultFunc(level Level, tag, msg, file string, line int) {
	logger := outLogger
	if level >= Warning {
		logger = errLogger
	}
	logger.Log(nil, level.slogLevel(), msg,
		slog.String("tag", tag),
		slog.String("level", level.String()),
		slog.String("src", fmt.Sprintf("%s:%d", file, line)))
}

func emit(level Level, tag string, format string, args ...any) {
	mu.Lock()
	fn := sink.Func
	mu.Unlock()
	if fn == nil {
		return
	}
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "???", 0
	}
	fn(level, tag, fmt.Sprintf(format, args...), file, line)
}

// Tracef logs a Trace-level message under tag.
func Tracef(tag, format string, args ...any) { emit(Trace, tag, format, args...) }

// Debugf logs a Debug-level message under tag.
func Debugf(tag, format string, args ...any) { emit(Debug, tag, format, args...) }

// Infof logs an Info-level message under tag.
func Infof(tag, format string, args ...any) { emit(Info, tag, format, args...) }

// Warnf logs a Warning-level message under tag.
func Warnf(tag, format string, args ...any) { emit(Warning, tag, format, args...) }

// Errorf logs an Error-level message under tag.
func Errorf(tag, format string, args ...any) { emit(Error, tag, format, args...) }

// Fatalf logs a Fatal-level message under tag, then calls
// os.Exit(1).
func Fatalf(tag, format string, args ...any) {
	emit(Fatal, tag, format, args...)
	os.Exit(1)
}
