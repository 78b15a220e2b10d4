package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/Rigaud3000/StarTrader/internal/ports"
)

// StdLogger writes plain text lines with the standard log package:
//
//	2024/03/01 12:00:00.000000 [INFO] store: Backtest stored | requestID=... | id=01H... trades=42
type StdLogger struct {
	out       *log.Logger
	level     LogLevel
	component string
}

// NewStdLogger creates a standard logger writing to os.Stderr.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewStdLoggerWithWriter(os.Stderr, level)
}

// NewStdLoggerWithWriter creates a standard logger writing to w.
func NewStdLoggerWithWriter(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{
		out:   log.New(w, "", log.LstdFlags|log.Lmicroseconds),
		level: level,
	}
}

// Named returns a logger sharing the output whose lines carry the component name.
func (l *StdLogger) Named(component string) ports.Logger {
	child := *l
	if child.component != "" {
		component = child.component + "." + component
	}
	child.component = component
	return &child
}

func (l *StdLogger) write(ctx context.Context, level LogLevel, msg string, err error, fields []map[string]interface{}) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] ", level)
	if l.component != "" {
		sb.WriteString(l.component + ": ")
	}
	sb.WriteString(msg)

	if id := RequestID(ctx); id != "" {
		sb.WriteString(" | requestID=" + id)
	}
	if err != nil {
		fmt.Fprintf(&sb, " | error: %v", err)
	}
	if len(fields) > 0 && len(fields[0]) > 0 {
		sb.WriteString(" |")
		for _, k := range slices.Sorted(maps.Keys(fields[0])) {
			fmt.Fprintf(&sb, " %s=%v", k, fields[0][k])
		}
	}

	l.out.Println(sb.String())
}

func (l *StdLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelDebug, msg, nil, fields)
}

func (l *StdLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelInfo, msg, nil, fields)
}

func (l *StdLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelWarn, msg, nil, fields)
}

func (l *StdLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
	l.write(ctx, LevelError, msg, err, fields)
}
