// Package logsink is a logr.LogSink writing timestamped lines to the console
// and to log files.
//
// Each line has the form:
//
//	2026-10-18T09:30:00.000Z info: PDF generated successfully! "path"="/tmp/out.pdf"
//
// Console outputs are colored by level when attached to a terminal.
package logsink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/mattn/go-isatty"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorGray  = "\033[90m"
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
)

// TimeFormat is the UTC timestamp layout of every line.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// logFileMode is the permission of created log files.
// #nosec G302 -- log files are intended to be readable
const logFileMode = 0o644

// Output is one destination for log lines.
type Output struct {
	W     io.Writer
	Color bool
}

// Console returns an Output writing to f, colored when f is a terminal.
func Console(f *os.File) Output {
	return Output{
		W:     f,
		Color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
	}
}

// OpenFile opens path for appending, creating it if needed.
// The caller closes the returned file.
func OpenFile(path string) (Output, io.Closer, error) {
	// #nosec G304 -- path comes from the user's own flag or config
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode)
	if err != nil {
		return Output{}, nil, fmt.Errorf("opening log file: %w", err)
	}
	return Output{W: f}, f, nil
}

// Sink implements logr.LogSink on top of a funcr.Formatter, which handles
// verbosity, names and key/value rendering. Sink adds the timestamp and level
// and fans lines out to its outputs. Outputs share one lock so lines never
// interleave.
type Sink struct {
	funcr.Formatter
	mu      *sync.Mutex
	outputs []Output
	now     func() time.Time
}

// Compile-time interface check
var _ logr.LogSink = (*Sink)(nil)

// New returns a logger writing to outputs. V(n) lines are written when
// n <= verbosity; V(0) is always on.
func New(verbosity int, outputs ...Output) logr.Logger {
	return logr.New(newSink(verbosity, time.Now, outputs...))
}

func newSink(verbosity int, now func() time.Time, outputs ...Output) *Sink {
	return &Sink{
		Formatter: funcr.NewFormatter(funcr.Options{
			Verbosity: verbosity,
			// Level, message and error are written by Sink itself
			RenderBuiltinsHook: func([]any) []any { return nil },
		}),
		mu:      &sync.Mutex{},
		outputs: outputs,
		now:     now,
	}
}

// Info implements logr.LogSink.
func (s *Sink) Info(level int, msg string, keysAndValues ...any) {
	name := "info"
	if level > 0 {
		name = "debug"
	}
	prefix, args := s.FormatInfo(level, msg, keysAndValues)
	s.write(name, prefix, msg, args)
}

// Error implements logr.LogSink.
func (s *Sink) Error(err error, msg string, keysAndValues ...any) {
	prefix, args := s.FormatError(err, msg, keysAndValues)
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	s.write("error", prefix, msg, args)
}

// WithValues implements logr.LogSink.
func (s *Sink) WithValues(keysAndValues ...any) logr.LogSink {
	c := *s
	c.AddValues(keysAndValues)
	return &c
}

// WithName implements logr.LogSink.
func (s *Sink) WithName(name string) logr.LogSink {
	c := *s
	c.AddName(name)
	return &c
}

func (s *Sink) write(level, prefix, msg, args string) {
	var b strings.Builder
	if prefix != "" {
		b.WriteString(prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	if args = strings.TrimSpace(args); args != "" {
		b.WriteByte(' ')
		b.WriteString(args)
	}
	body := b.String()

	stamp := s.now().UTC().Format(TimeFormat)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, out := range s.outputs {
		lvl := level
		if out.Color {
			lvl = levelColor(level) + level + colorReset
		}
		_, _ = fmt.Fprintf(out.W, "%s %s: %s\n", stamp, lvl, body)
	}
}

func levelColor(level string) string {
	switch level {
	case "error":
		return colorRed
	case "debug":
		return colorGray
	default:
		return colorGreen
	}
}
