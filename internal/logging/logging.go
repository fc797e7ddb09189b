// Package logging configures the runtime slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options control where and how much is logged.
type Options struct {
	// Path is the log file. Empty disables file logging.
	Path string
	// Stderr mirrors records to standard error.
	Stderr bool
	Level  slog.Level
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

// Setup builds a text logger, installs it as the slog default, and returns
// it with a cleanup func that closes the log file. When the file cannot be
// opened, records go to stderr instead.
func Setup(opts Options) (*slog.Logger, func()) {
	var writers []io.Writer
	cleanup := func() {}

	if opts.Path != "" {
		f, err := openLogFile(opts.Path)
		if err != nil {
			opts.Stderr = true
			defer slog.Warn("file logging disabled", "path", opts.Path, "err", err)
		} else {
			writers = append(writers, f)
			cleanup = func() {
				_ = f.Close()
			}
		}
	}
	if opts.Stderr {
		writers = append(writers, os.Stderr)
	}

	var w io.Writer = io.Discard
	switch len(writers) {
	case 0:
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: opts.Level}))
	slog.SetDefault(logger)
	return logger, cleanup
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
