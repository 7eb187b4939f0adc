package app

import (
	"io"
	"log/slog"
)

// newLogger builds the batch logger. Unknown levels fall back to info and
// any format other than json is written as text. The global logger is left
// alone so several apps can run side by side in tests.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		h = slog.NewJSONHandler(w, opts)
	}
	return slog.New(h).With("app", "flightderive")
}
