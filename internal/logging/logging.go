// Package logging builds the logrus logger used by the CLI for diagnostics.
// Generated code and user-facing status lines never go through it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timestampFormat = "2006-01-02 15:04:05"

// Options configures New
type Options struct {
	Level string

	// Console receives log lines; defaults to os.Stderr
	Console io.Writer

	// File enables rotating file output when set
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// Logger wraps a logrus logger and the rotating file it may write to
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// New creates a logger writing to the console and, when Options.File is
// set, to a lumberjack-rotated file.
func New(opts Options) (*Logger, error) {
	logger := logrus.New()
	logger.SetLevel(ParseLevel(opts.Level))
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		PadLevelText:    true,
	})

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	l := &Logger{Logger: logger}
	if opts.File == "" {
		logger.SetOutput(console)
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	l.file = &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
		LocalTime:  true,
	}
	logger.SetOutput(io.MultiWriter(console, l.file))
	return l, nil
}

// Discard returns a logger that drops everything, for tests and library use
func Discard() *Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Logger{Logger: logger}
}

// OrDiscard returns l, or a discarding logger when l is nil
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}

// WriterOr returns w, or fallback when w is nil. Status lines use it to
// default to the process streams.
func WriterOr(w io.Writer, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

// ParseLevel parses a level name, defaulting to warn
func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// Close flushes and closes the log file, if any
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
