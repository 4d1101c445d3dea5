// Package logging provides the leveled logger shared by the supervisor,
// runtime, and task packages. Output goes to a single writer (stderr in
// the binary) so decoded frames on stdout stay clean.
package logging

import (
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"
)

type Level int32

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "NONE"
	}
}

// Logger writes timestamped leveled lines through a stdlib log.Logger.
// The level is atomic so verbosity can be raised while delivery
// goroutines are already logging.
type Logger struct {
	out   *log.Logger
	level atomic.Int32
}

// New creates a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{out: log.New(w, "", 0)}
	l.level.Store(int32(level))
	return l
}

// SetLevel replaces the current level.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Raise bumps verbosity one step, up to TRACE. The first call enables
// INFO; repeated calls walk toward TRACE.
func (l *Logger) Raise() {
	for {
		cur := Level(l.level.Load())
		next := cur
		if cur < LevelInfo {
			next = LevelInfo
		} else if cur < LevelTrace {
			next = cur + 1
		}
		if next == cur || l.level.CompareAndSwap(int32(cur), int32(next)) {
			return
		}
	}
}

// Enabled reports whether a message at the given level would be written.
func (l *Logger) Enabled(level Level) bool {
	lv := Level(l.level.Load())
	return lv != LevelNone && level <= lv
}

func (l *Logger) logf(level Level, tag, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("%s %s %s: %s", time.Now().Format(time.RFC3339), level, tag, msg)
}

func (l *Logger) Errorf(tag, format string, args ...any) { l.logf(LevelError, tag, format, args...) }

func (l *Logger) Warnf(tag, format string, args ...any) { l.logf(LevelWarn, tag, format, args...) }

func (l *Logger) Infof(tag, format string, args ...any) { l.logf(LevelInfo, tag, format, args...) }

func (l *Logger) Debugf(tag, format string, args ...any) { l.logf(LevelDebug, tag, format, args...) }

func (l *Logger) Tracef(tag, format string, args ...any) { l.logf(LevelTrace, tag, format, args...) }
