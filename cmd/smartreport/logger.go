package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// newLogger builds the diagnostics logger for one smartreport invocation.
// Without a log file, lines go to stderr in console form and never mix with
// the JSON documents printed on stdout. A log file gets JSON lines appended.
// Every line carries the running subcommand.
func newLogger(cfg *config, command string, stderr io.Writer) (zerolog.Logger, func(), error) {
	closer := func() {}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, closer, fmt.Errorf("log level %q: %w", cfg.LogLevel, err)
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: stderr, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Logger{}, closer, fmt.Errorf("create logs dir: %w", err)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, closer, err
		}
		closer = func() { _ = f.Close() }
		w = f
	}

	l := zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Str("command", command).
		Logger()
	return l, closer, nil
}
