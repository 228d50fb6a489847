// Package logging writes leya's JSONL log to a rotating file under the XDG
// state directory. Every CLI process appends to the same file, so records
// carry the pid and the command that wrote them.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
)

// Runtime is an open logger and the file behind it.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

// Options tunes the log sink.
type Options struct {
	Debug bool
	// Command is the CLI command of this process, e.g. serve or say.
	Command    string
	MaxSizeMB  int
	MaxBackups int
}

// Close flushes and closes the log file.
func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New opens the rotating log file and returns a JSON logger writing to it.
func New(opts Options) (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, err
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    orDefault(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: orDefault(opts.MaxBackups, defaultMaxBackups),
		Compress:   true,
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	attrs := []any{"pid", os.Getpid()}
	if opts.Command != "" {
		attrs = append(attrs, "cmd", opts.Command)
	}
	logger := slog.New(slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})).With(attrs...)
	return Runtime{Logger: logger, Path: path, closer: sink}, nil
}

// orDefault returns v, or fallback when v is not positive.
func orDefault(v int, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// resolveLogPath prefers $XDG_STATE_HOME/leya and falls back to
// ~/.local/state/leya.
func resolveLogPath() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return filepath.Join(xdg, "leya", "log.jsonl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for the log file")
	}
	return filepath.Join(home, ".local", "state", "leya", "log.jsonl"), nil
}
