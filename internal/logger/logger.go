package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Level  string
	Format string // "text", "json", "console"
	Output io.Writer
	// File, when set, receives a copy of every line.
	File string
}

var (
	once    sync.Once
	mu      sync.Mutex
	lg      *slog.Logger
	closeFn func() error
)

// Init installs the process logger once. Later calls are no-ops; use
// Reconfigure to swap it.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		err = install(cfg)
	})
	return err
}

// Reconfigure replaces the process logger, closing any previously opened
// log file.
func Reconfigure(cfg Config) error {
	once.Do(func() {})
	return install(cfg)
}

func L() *slog.Logger {
	mu.Lock()
	cur := lg
	mu.Unlock()
	if cur == nil {
		_ = Init(Config{Level: "debug", Format: "console"})
		mu.Lock()
		cur = lg
		mu.Unlock()
	}
	return cur
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if closeFn == nil {
		return nil
	}
	err := closeFn()
	closeFn = nil
	return err
}

func install(cfg Config) error {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	var file *os.File
	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("logger: create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("logger: open %s: %w", cfg.File, err)
		}
		file = f
		out = io.MultiWriter(out, f)
	}

	l := slog.New(NewHandler(cfg.Format, cfg.Level, out))

	mu.Lock()
	prevClose := closeFn
	lg = l
	closeFn = nil
	if file != nil {
		closeFn = file.Close
	}
	mu.Unlock()

	slog.SetDefault(l)
	if prevClose != nil {
		_ = prevClose()
	}
	return nil
}

// NewHandler builds the handler for format writing to w.
func NewHandler(format, level string, w io.Writer) slog.Handler {
	lvl := parseLevel(level)
	switch format {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		return &consoleHandler{w: w, level: lvl, mu: &sync.Mutex{}}
	}
}

func parseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// consoleHandler outputs human-friendly log lines:
//
//	12:00:00 INFO  Scenario started  duration=10 dt=0.02 actors=2
type consoleHandler struct {
	w     io.Writer
	level slog.Level
	attrs []string
	group string
	mu    *sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Time.Format(time.TimeOnly))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		b.WriteString(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		b.WriteString(formatAttr(h.group, a))
		return true
	})
	b.WriteByte('\n')

	if h.mu != nil {
		h.mu.Lock()
		defer h.mu.Unlock()
	}
	_, err := io.WriteString(h.w, b.String())
	return err
}

// WithAttrs renders attrs under the current group right away so a later
// WithGroup does not re-prefix them.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rendered := make([]string, 0, len(h.attrs)+len(attrs))
	rendered = append(rendered, h.attrs...)
	for _, a := range attrs {
		rendered = append(rendered, formatAttr(h.group, a))
	}
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		attrs: rendered,
		group: h.group,
		mu:    h.mu,
	}
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	prefix := name
	if h.group != "" {
		prefix = h.group + "." + name
	}
	return &consoleHandler{
		w:     h.w,
		level: h.level,
		attrs: append([]string{}, h.attrs...),
		group: prefix,
		mu:    h.mu,
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERROR"
	case l >= slog.LevelWarn:
		return "WARN "
	case l >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatAttr(group string, a slog.Attr) string {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		sub := a.Key
		if group != "" && sub != "" {
			sub = group + "." + sub
		} else if sub == "" {
			sub = group
		}
		var b strings.Builder
		for _, ga := range a.Value.Group() {
			b.WriteString(formatAttr(sub, ga))
		}
		return b.String()
	}
	key := a.Key
	if group != "" {
		key = group + "." + key
	}
	return fmt.Sprintf("  %s=%v", key, a.Value)
}
