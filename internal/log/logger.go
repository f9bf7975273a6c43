/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log sets up the slog logger shared by every pagebuilder component.
// Console output is a compact one-line format (or JSON); an optional rotating
// JSON file can be added for long editing sessions.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"pagebuilder/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel  = "PB_LOG_LEVEL"
	EnvFormat = "PB_LOG_FORMAT"
	EnvSource = "PB_LOG_SOURCE"
	EnvFile   = "PB_LOG_FILE"
)

// Options controls logger initialization.
//   - Level: debug|info|warn|error (default info)
//   - Format: console|json (default console)
//   - File: when set, records are also written as JSON to a rotated file
type Options struct {
	Level     string
	Format    string
	AddSource bool
	File      string
	// Writer replaces stderr for console output; used by tests.
	Writer io.Writer
}

var (
	mu      sync.RWMutex
	current *slog.Logger
)

// L returns the process logger, initializing it from the environment on first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init installs a new process logger and makes it the slog default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)
	out := opts.Writer
	if out == nil {
		out = os.Stderr
	}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &lineHandler{level: lvl, source: opts.AddSource, w: out, mu: &sync.Mutex{}}
	}
	handlers := []slog.Handler{console}

	if f := strings.TrimSpace(opts.File); f != "" {
		rot := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		handlers = append(handlers, slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	var h slog.Handler = handlers[0]
	if len(handlers) > 1 {
		h = fanout(handlers)
	}
	logger := slog.New(h).With(
		slog.String("app", "pagebuilder"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	current = logger
	mu.Unlock()
	slog.SetDefault(logger)
}

// FromEnv builds Options from PB_LOG_* variables.
func FromEnv() Options {
	return Options{
		Level:     envOr(EnvLevel, "info"),
		Format:    envOr(EnvFormat, "console"),
		AddSource: parseBool(os.Getenv(EnvSource)),
		File:      os.Getenv(EnvFile),
	}
}

// WithComponent returns a logger tagged with the component name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates l with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithPage annotates l with the page the operation targets.
func WithPage(l *slog.Logger, page string) *slog.Logger { return l.With(slog.String("page", page)) }

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// lineHandler prints "ts LVL msg k=v ..." lines for humans.
type lineHandler struct {
	level  slog.Level
	source bool
	w      io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool { return level >= h.level }

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(256)
	b.WriteString(r.Time.Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	if h.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b.WriteString(" src=")
		b.WriteString(f.File)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(f.Line))
	}
	b.WriteByte('\n')
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	n := *h
	n.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	n.attrs = append(n.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		n.attrs = append(n.attrs, a)
	}
	return &n
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	n := *h
	n.prefix = h.prefix + name + "."
	return &n
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		b.WriteString(strconv.FormatFloat(v.Float64(), 'f', -1, 64))
	case slog.KindTime:
		b.WriteString(v.Time().Format(time.RFC3339))
	default:
		b.WriteString(v.String())
	}
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERR"
	case l >= slog.LevelWarn:
		return "WRN"
	case l >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}
