// Package klog provides structured logging for subsystems that run after
// heap bring-up (scheduler, syscall dispatcher, IRQ bottom halves). Code
// that runs earlier, before an io.Writer sink or the allocator exists,
// uses internal/kfmt/early instead.
package klog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// Level holds the minimum level logged. It can be changed at runtime,
	// e.g. from a cmdline option parsed by internal/cmdline.
	Level = &slog.LevelVar{}

	// defaultLogger is the global logger returned by Default. Subsystems
	// call Default during init and cache the result; the default does not
	// change identity at runtime, only its Level.
	defaultLogger *Logger
	defaultOnce   sync.Once
	defaultSink   io.Writer
)

type (
	Attr   = slog.Attr
	Logger = slog.Logger
	Value  = slog.Value
)

var (
	String      = slog.String
	Int         = slog.Int
	Uint64      = slog.Uint64
	StringValue = slog.StringValue
	Group       = slog.Group
	Any         = slog.Any
)

const (
	Debug = slog.LevelDebug
	Info  = slog.LevelInfo
	Warn  = slog.LevelWarn
	Error = slog.LevelError
)

// SetSink installs w as the destination for the default logger. It must be
// called once, after the HAL console/TTY is attached, before Default is
// first used; once Default has built the logger, later calls have no
// effect on it.
func SetSink(w io.Writer) {
	defaultSink = w
}

// Default returns the global logger, constructing it lazily around
// whatever sink SetSink last installed (or io.Discard if none was).
func Default() *Logger {
	defaultOnce.Do(func() {
		sink := defaultSink
		if sink == nil {
			sink = io.Discard
		}
		defaultLogger = New(sink)
	})
	return defaultLogger
}

// New returns a logger that formats records with Handler and writes them
// to out.
func New(out io.Writer) *Logger {
	return slog.New(NewHandler(out))
}

// Handler implements slog.Handler, producing line-oriented, field-aligned
// records suitable for a serial console.
type Handler struct {
	mut *sync.Mutex
	out io.Writer

	opts  *slog.HandlerOptions
	group string
	attrs []Attr
}

var handlerOpts = &slog.HandlerOptions{
	AddSource:   true,
	Level:       Level,
	ReplaceAttr: func(_ []string, attr Attr) Attr { return attr },
}

// NewHandler creates a Handler writing to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{
		out:  out,
		mut:  new(sync.Mutex),
		opts: handlerOpts,
	}
}

// Enabled reports whether level is at or above the configured minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle formats and writes a single log record.
func (h *Handler) Handle(_ context.Context, rec slog.Record) error {
	buf := make([]byte, 0, 512)
	out := bytes.NewBuffer(buf)

	fmt.Fprintf(out, "%s [%s]", rec.Time.Format(time.RFC3339Nano), rec.Level.String())

	if h.opts.AddSource && rec.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{rec.PC})
		f, _ := frames.Next()
		_, file := path.Split(f.File)
		fmt.Fprintf(out, " %s:%d", file, f.Line)
	}

	fmt.Fprintf(out, " %s", rec.Message)

	for _, a := range h.attrs {
		if err := h.appendAttr(out, a); err != nil {
			return err
		}
	}

	rec.Attrs(func(attr slog.Attr) bool {
		_ = h.appendAttr(out, attr)
		return true
	})

	fmt.Fprintln(out)

	h.mut.Lock()
	defer h.mut.Unlock()

	_, err := h.out.Write(out.Bytes())
	return err
}

// WithGroup returns a handler that carries name as its group. The group is
// passed to ReplaceAttr but is not written to the output: attribute keys
// appear without a group prefix.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	attrs := make([]Attr, len(h.attrs))
	copy(attrs, h.attrs)
	return &Handler{mut: h.mut, out: h.out, opts: h.opts, attrs: attrs, group: name}
}

// WithAttrs returns a handler with attrs appended to its fixed attribute
// set.
func (h *Handler) WithAttrs(attrs []Attr) slog.Handler {
	merged := make([]Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &Handler{out: h.out, mut: h.mut, opts: h.opts, attrs: merged, group: h.group}
}

func (h *Handler) appendAttr(out io.Writer, attr slog.Attr) error {
	attr.Value = attr.Value.Resolve()
	attr = h.opts.ReplaceAttr([]string{h.group}, attr)

	if attr.Equal(Attr{}) {
		return nil
	}

	key := strings.ToLower(attr.Key)
	if attr.Value.Kind() == slog.KindGroup {
		for _, a := range attr.Value.Group() {
			if err := h.appendAttr(out, a); err != nil {
				return err
			}
		}
		return nil
	}

	_, err := fmt.Fprintf(out, " %s=%v", key, attr.Value.Any())
	return err
}
