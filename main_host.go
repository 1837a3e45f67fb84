//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"spark/config"
	"spark/extern"
	"spark/hal"
	"spark/logging"
	"spark/system"
)

// halLogger adapts the host HAL's line logger to the leveled logging.Logger
// interface the rest of the emulator is built against.
type halLogger struct {
	h      hal.Logger
	prefix string
}

func (l halLogger) line(level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		l.h.WriteLineString(fmt.Sprintf("%s [%s] %s", level, l.prefix, msg))
		return
	}
	l.h.WriteLineString(fmt.Sprintf("%s %s", level, msg))
}

func (l halLogger) Infof(format string, args ...any)  { l.line("INFO", format, args...) }
func (l halLogger) Warnf(format string, args ...any)  { l.line("WARN", format, args...) }
func (l halLogger) Errorf(format string, args ...any) { l.line("ERROR", format, args...) }
func (l halLogger) Named(subsystem string) logging.Logger {
	prefix := subsystem
	if l.prefix != "" {
		prefix = l.prefix + "." + subsystem
	}
	return halLogger{h: l.h, prefix: prefix}
}

// stringList accumulates repeated -load flags in the order they were given.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	var (
		configPath  string
		versionFlag string
		jitType     string
		loads       stringList
		mounts      stringList
		ticks       uint64
	)
	flag.StringVar(&configPath, "config", "coreconfig.yml", "Path to coreconfig.yml.")
	flag.StringVar(&versionFlag, "version", "epoc94", "EPOC version: epoc6, epoc93, epoc94, epoc9, epoc10.")
	flag.StringVar(&jitType, "jit", "", "JIT backend name threaded through to the CPU engine.")
	flag.Var(&loads, "load", "Image id to load at startup; repeatable.")
	flag.Var(&mounts, "mount", "drive=hostdir to mount as a host-backed drive; repeatable.")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N host ticks, one Loop iteration each (0 = run until exit is requested).")
	flag.Parse()

	h := hal.New()
	log := logging.Logger(halLogger{h: h.Logger()})

	cfg := config.Default()
	if f, err := os.Open(configPath); err == nil {
		cfg = config.Load(f, config.LineDecoder{})
		f.Close()
	} else {
		log.Warnf("main: %s not found, using documented defaults", configPath)
	}

	version, ok := system.ParseVersion(versionFlag)
	if !ok {
		log.Errorf("main: unrecognized -version %q", versionFlag)
		os.Exit(2)
	}

	s := system.New(log)
	s.SetSymbianVersion(version)
	s.SetJitType(jitType)
	s.SetConfig(cfg)

	for _, m := range mounts {
		drive, path, ok := strings.Cut(m, "=")
		if !ok || len(drive) != 1 {
			log.Errorf("main: -mount %q must be of the form d=/host/path", m)
			os.Exit(2)
		}
		s.Mount(system.Drive(strings.ToLower(drive)[0]), system.MediaHostDir, path, 0, extern.NullVFS{})
	}

	if err := s.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	for _, imageID := range loads {
		if _, err := s.Load(imageID); err != nil {
			log.Errorf("main: load %q: %v", imageID, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	run(ctx, s, h, ticks)

	if err := s.Shutdown(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run paces the HAL's wall-clock tick source with a 1ms host ticker, and
// runs one Loop iteration per tick the HAL emits back; the façade's own
// background drivers (timing advance, completion draining)
// keep the virtual clock and IPC state moving independently of this cadence.
func run(ctx context.Context, s *system.System, h *hal.Host, tickBudget uint64) {
	pacer := time.NewTicker(time.Millisecond)
	defer pacer.Stop()

	tickCh := h.Time().Ticks()
	var seen uint64
	for {
		select {
		case <-ctx.Done():
			s.RequestExit()
			return
		case <-pacer.C:
			h.Step(1)
		case <-tickCh:
			seen++
			if s.Loop() == 0 {
				return
			}
			if tickBudget != 0 && seen >= tickBudget {
				s.RequestExit()
				return
			}
		}
	}
}
