package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"sync/atomic"
)

// sink is the output shared by a logger and everything derived from it
// through WithFields, so a level change on the root reaches all of them.
type sink struct {
	stdout    *log.Logger
	stderr    *log.Logger
	level     atomic.Int32
	useColors bool
	exit      func(code int)
}

// DefaultLogger writes one line per entry through Go's standard log package.
// Debug and Info go to stdout; Warn, Error and Fatal go to stderr, colored
// when stderr is a terminal. Fatal exits the process after writing.
type DefaultLogger struct {
	out    *sink
	fields Fields
}

// NewDefaultLogger creates a logger on the process streams, colored when
// attached to a terminal.
func NewDefaultLogger() *DefaultLogger {
	d := NewWriterLogger(os.Stdout, os.Stderr)
	d.out.useColors = isTerminal(os.Stderr)
	return d
}

// NewWriterLogger creates an uncolored logger writing to the given streams.
func NewWriterLogger(stdout, stderr io.Writer) *DefaultLogger {
	s := &sink{
		stdout: log.New(stdout, "", log.LstdFlags),
		stderr: log.New(stderr, "", log.LstdFlags),
		exit:   os.Exit,
	}
	s.level.Store(int32(InfoLevel))
	return &DefaultLogger{out: s, fields: Fields{}}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// format renders "[LEVEL] msg: err k=v ..." with keys in sorted order.
func (d *DefaultLogger) format(level Level, err error, msg string, extra []Fields) string {
	fields := Fields{}
	maps.Copy(fields, d.fields)
	for _, f := range extra {
		maps.Copy(fields, f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	line := b.String()

	if !d.out.useColors {
		return line
	}
	switch level {
	case WarnLevel:
		return ColorYellow + line + ColorReset
	case ErrorLevel:
		return ColorRed + line + ColorReset
	case FatalLevel:
		return ColorBold + ColorRed + line + ColorReset
	}
	return line
}

func (d *DefaultLogger) write(level Level, err error, msg string, fields []Fields) {
	if level < Level(d.out.level.Load()) {
		return
	}
	line := d.format(level, err, msg, fields)

	if level < WarnLevel {
		d.out.stdout.Println(line)
		return
	}
	d.out.stderr.Println(line)
	if level == FatalLevel {
		d.out.exit(1)
	}
}

func (d *DefaultLogger) Debug(msg string, fields ...Fields) {
	d.write(DebugLevel, nil, msg, fields)
}

func (d *DefaultLogger) Info(msg string, fields ...Fields) {
	d.write(InfoLevel, nil, msg, fields)
}

func (d *DefaultLogger) Warn(msg string, fields ...Fields) {
	d.write(WarnLevel, nil, msg, fields)
}

func (d *DefaultLogger) Error(err error, msg string, fields ...Fields) {
	d.write(ErrorLevel, err, msg, fields)
}

func (d *DefaultLogger) Fatal(err error, msg string, fields ...Fields) {
	d.write(FatalLevel, err, msg, fields)
}

// WithFields returns a child logger that adds fields to every entry. The
// child shares the parent's output and level.
func (d *DefaultLogger) WithFields(fields Fields) Logger {
	merged := make(Fields, len(d.fields)+len(fields))
	maps.Copy(merged, d.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{out: d.out, fields: merged}
}

func (d *DefaultLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return d.WithFields(fields)
	}
	return d
}

// SetLevel is safe to call while other goroutines log.
func (d *DefaultLogger) SetLevel(level Level) {
	d.out.level.Store(int32(level))
}

// NoOpLogger discards everything. Tests use it to keep output quiet.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, fields ...Fields)            {}
func (n *NoOpLogger) Info(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Warn(msg string, fields ...Fields)             {}
func (n *NoOpLogger) Error(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) Fatal(err error, msg string, fields ...Fields) {}
func (n *NoOpLogger) WithFields(fields Fields) Logger               { return n }
func (n *NoOpLogger) WithContext(ctx context.Context) Logger        { return n }
func (n *NoOpLogger) SetLevel(level Level)                          {}
