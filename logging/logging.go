// Package logging provides the emulator's leveled logging seam.
//
// It mirrors the host/guest split used throughout the rest of the tree: a
// small interface stands between every subsystem and the concrete sink, so
// tests can swap in a silent or buffering logger without touching callers.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes leveled, newline-delimited lines tagged with a subsystem name.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// Named returns a Logger that prefixes every line with subsystem.
	Named(subsystem string) Logger
}

// Std is a mutex-guarded Logger writing to an io.Writer.
type Std struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
}

// New returns a Std logger writing to w.
func New(w io.Writer) *Std {
	return &Std{mu: &sync.Mutex{}, w: w}
}

// NewStdout returns a Std logger writing to os.Stdout.
func NewStdout() *Std { return New(os.Stdout) }

func (l *Std) Named(subsystem string) Logger {
	prefix := subsystem
	if l.prefix != "" {
		prefix = l.prefix + "." + subsystem
	}
	return &Std{mu: l.mu, w: l.w, prefix: prefix}
}

func (l *Std) writeLine(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		fmt.Fprintf(l.w, "%s [%s] %s\n", level, l.prefix, msg)
		return
	}
	fmt.Fprintf(l.w, "%s %s\n", level, msg)
}

func (l *Std) Infof(format string, args ...any)  { l.writeLine("INFO", format, args...) }
func (l *Std) Warnf(format string, args ...any)  { l.writeLine("WARN", format, args...) }
func (l *Std) Errorf(format string, args ...any) { l.writeLine("ERROR", format, args...) }

// Discard is a Logger that drops every line; used in tests and wherever a
// config flag gates a log category off.
type Discard struct{}

func (Discard) Infof(string, ...any)     {}
func (Discard) Warnf(string, ...any)     {}
func (Discard) Errorf(string, ...any)    {}
func (Discard) Named(string) Logger      { return Discard{} }

// Gated wraps a Logger, dropping Infof lines unless enabled is true. It backs
// the per-category boolean flags in coreconfig.yml (log_code, log_ipc, ...).
type Gated struct {
	Logger
	enabled bool
}

// NewGated returns a Logger whose Infof is active only when enabled is true;
// Warnf/Errorf always pass through.
func NewGated(l Logger, enabled bool) Logger {
	return &Gated{Logger: l, enabled: enabled}
}

func (g *Gated) Infof(format string, args ...any) {
	if !g.enabled {
		return
	}
	g.Logger.Infof(format, args...)
}

func (g *Gated) Named(subsystem string) Logger {
	return &Gated{Logger: g.Logger.Named(subsystem), enabled: g.enabled}
}
