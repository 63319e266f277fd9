// Package logging configures the diagnostic logger shared by the commands.
package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// DefaultLevel keeps diagnostics quiet unless something goes wrong.
const DefaultLevel = slog.LevelWarn

// levelColors ignore color.NoColor; New has already decided.
var levelColors = map[slog.Level]*color.Color{
	slog.LevelDebug: forced(color.FgCyan),
	slog.LevelInfo:  forced(color.FgGreen),
	slog.LevelWarn:  forced(color.FgYellow),
	slog.LevelError: forced(color.FgHiRed),
}

func forced(attr color.Attribute) *color.Color {
	c := color.New(attr)
	c.EnableColor()
	return c
}

// ParseLevel maps a verbosity name (debug, info, warn, error) to a level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultLevel, nil
	case "debug", "dbug", "trace":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "eror", "crit":
		return slog.LevelError, nil
	default:
		return DefaultLevel, fmt.Errorf("unknown verbosity %q", name)
	}
}

// New returns a text logger on f. Levels are colorized when f is a terminal
// and TERM is not "dumb".
func New(f *os.File, level slog.Level) *slog.Logger {
	usecolor := (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) && os.Getenv("TERM") != "dumb"
	var out io.Writer = f
	if usecolor {
		out = colorable.NewColorable(f)
	}
	return NewWithWriter(out, level, usecolor)
}

// NewWithWriter returns a text logger on w.
func NewWithWriter(w io.Writer, level slog.Level, usecolor bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if usecolor {
		return slog.New(newColorHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns logger, or a discarding logger when it is nil.
func OrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return Discard()
	}
	return logger
}

// colorHandler formats records with a text handler and writes each line in
// its level's color. The text handler never sees escape sequences, so
// nothing gets quoted.
type colorHandler struct {
	mu    *sync.Mutex
	w     io.Writer
	buf   *bytes.Buffer
	inner slog.Handler
}

func newColorHandler(w io.Writer, opts *slog.HandlerOptions) *colorHandler {
	buf := new(bytes.Buffer)
	return &colorHandler{
		mu:    new(sync.Mutex),
		w:     w,
		buf:   buf,
		inner: slog.NewTextHandler(buf, opts),
	}
}

func (h *colorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *colorHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.buf.Reset()
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	c, ok := levelColors[r.Level]
	if !ok {
		_, err := h.w.Write(h.buf.Bytes())
		return err
	}
	line := strings.TrimSuffix(h.buf.String(), "\n")
	if _, err := c.Fprint(h.w, line); err != nil {
		return err
	}
	_, err := io.WriteString(h.w, "\n")
	return err
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &colorHandler{mu: h.mu, w: h.w, buf: h.buf, inner: h.inner.WithAttrs(attrs)}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	return &colorHandler{mu: h.mu, w: h.w, buf: h.buf, inner: h.inner.WithGroup(name)}
}
