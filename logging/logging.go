// Package logging builds the process-wide slog logger shared by the
// commands.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New returns a logger writing to stderr: colored text on a terminal, JSON
// otherwise. verbose lowers the level to debug.
func New(verbose bool) (*slog.Logger, *slog.LevelVar) {
	return NewWithWriter(os.Stderr, isTerminal(os.Stderr), verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, terminal, verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	var handler slog.Handler
	if terminal {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler), level
}

// Setup installs the logger as the slog default.
func Setup(verbose bool) *slog.Logger {
	logger, level := New(verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())
	return logger
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
