// Package logging configures the process-wide slog logger.
package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var levelColors = []struct {
	level string
	attr  color.Attribute
}{
	{"ERROR", color.FgRed},
	{"WARN", color.FgYellow},
	{"INFO", color.FgGreen},
	{"DEBUG", color.FgCyan},
}

// Configure installs a default logger on stderr with colorized levels on
// interactive terminals. Debug lowers the level to Debug.
func Configure(debug bool) *slog.Logger {
	logger := New(os.Stderr, debug, colorEnabled(os.Stderr))
	slog.SetDefault(logger)
	return logger
}

// New returns a text logger writing to out.
func New(out io.Writer, debug bool, colorize bool) *slog.Logger {
	if colorize {
		out = newColorizingWriter(out)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

type colorizingWriter struct {
	out      io.Writer
	replacer [][2][]byte
}

func newColorizingWriter(out io.Writer) colorizingWriter {
	w := colorizingWriter{out: out}
	for _, lc := range levelColors {
		c := color.New(lc.attr)
		c.EnableColor()
		w.replacer = append(w.replacer, [2][]byte{
			[]byte("level=" + lc.level),
			[]byte("level=" + c.Sprint(lc.level)),
		})
	}
	return w
}

func (w colorizingWriter) Write(p []byte) (int, error) {
	colored := p
	for _, r := range w.replacer {
		colored = bytes.Replace(colored, r[0], r[1], 1)
	}

	if _, err := w.out.Write(colored); err != nil {
		return 0, err
	}
	return len(p), nil
}

func colorEnabled(f *os.File) bool {
	if os.Getenv("CLICOLOR_FORCE") == "1" {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
