package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

func main() {
	setupLogger(os.Stdout, "info")

	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger sets the global logger. Unknown levels fall back to info.
func setupLogger(w io.Writer, level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	slog.SetDefault(slog.New(
		tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}),
	))
}
