// Package system wires the kernel, timing, memory, and window-server
// packages into the single façade a host entry point drives: the System
// object the rest of the emulator is built around.
package system

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"spark/config"
	"spark/extern"
	"spark/logging"
	"spark/memory"
	"spark/sparkos/kernel"
	"spark/sparkos/services/window"
	"spark/timing"
)

// tickInterval paces both background drivers; it has no guest-visible
// meaning (the virtual clock advances in its own Ticks unit), it only
// bounds how stale the completion queue and virtual clock can get between
// Loop iterations.
const tickInterval = 2 * time.Millisecond

// Drive is a single-letter guest drive identifier, a..z.
type Drive byte

// Media is the storage medium a drive is mounted from.
type Media int

const (
	MediaNone Media = iota
	MediaROM
	MediaHostDir
)

type mount struct {
	media Media
	path  string
	attrib uint32
	vfs   extern.VFS
}

// System is the emulator's top-level façade: one Kernel, one virtual
// clock, one window server, and the drive table and loader it drives guest
// processes from.
type System struct {
	mu sync.Mutex

	log     logging.Logger
	ipcLog  logging.Logger
	version EpocVersion
	jitType string

	kernel *kernel.Kernel
	spaces map[kernel.ObjectID]*memory.Space
	window *window.Server

	// clock has its own lock: the kernel's timed calls arm and cancel
	// events with the kernel lock released, and Advance fires callbacks
	// that re-enter the kernel through PostCompletion.
	clockMu sync.Mutex
	clock   *timing.System

	loader extern.Loader
	hle    extern.HLE
	drives map[Drive]mount

	cfg config.Config

	bootThread kernel.ObjectID

	wservThread  kernel.ObjectID
	wservServer  kernel.ObjectID
	wservClients map[kernel.ObjectID]uint32

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New returns an uninitialized System. Call Init before Load/Loop.
func New(log logging.Logger) *System {
	if log == nil {
		log = logging.Discard{}
	}
	return &System{
		log:          log,
		spaces:       make(map[kernel.ObjectID]*memory.Space),
		drives:       make(map[Drive]mount),
		loader:       extern.StaticLoader{},
		version:      Epoc94,
		wservClients: make(map[kernel.ObjectID]uint32),
	}
}

// SetSymbianVersion selects the guest ABI/memory-map Load uses for every
// process created afterward.
func (s *System) SetSymbianVersion(v EpocVersion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

// SetJitType records the configured JIT backend name. The CPU engine that
// would consume it is out of scope; System only threads the value through
// so a host entry point can log/validate it.
func (s *System) SetJitType(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jitType = t
}

// SetLoader installs the Loader collaborator Load uses to resolve image
// ids; defaults to an empty extern.StaticLoader.
func (s *System) SetLoader(l extern.Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader = l
}

// SetHLE installs the HLE library-import resolver.
func (s *System) SetHLE(h extern.HLE) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hle = h
}

// SetConfig installs the decoded coreconfig.yml; Init reads Startup and
// ForceLoad from it.
func (s *System) SetConfig(cfg config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Init constructs the Kernel, virtual clock, window server, and the
// façade's own bootstrap process (whose handle table owns every Handle
// Init/Load hands back), then starts the two background drivers — timing
// advance and async-completion draining — supervised by an errgroup whose
// result Shutdown returns. A panic in either driver is not recovered.
func (s *System) Init() error {
	s.mu.Lock()
	s.kernel = kernel.New(s.log.Named("kernel"))
	s.clock = timing.New()
	s.kernel.SetTimerDriver(&clockDriver{s: s})
	s.window = window.New(s.log.Named("window"))
	s.ipcLog = logging.NewGated(s.log.Named("ipc"), s.cfg.LogIPC)

	bootProc := s.kernel.CreateProcess("!System", 0, kernel.UID{}, "")
	bootThread, ok := s.kernel.CreateThread(bootProc, "!SystemBoot", 0, 0)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("system: failed to create bootstrap thread")
	}
	s.kernel.Resume(bootThread)
	s.kernel.RunProcess(bootProc)
	s.bootThread = bootThread

	wservProc := s.kernel.CreateProcess("!Wserv", 1, kernel.UID{}, "")
	wservThread, ok := s.kernel.CreateThread(wservProc, "!WservMain", 1, 0)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("system: failed to create window-server thread")
	}
	s.kernel.Resume(wservThread)
	s.kernel.RunProcess(wservProc)
	s.wservThread = wservThread
	s.wservServer = s.kernel.CreateServer("!Window", wservThread)

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.group, s.ctx = errgroup.WithContext(s.ctx)
	s.group.Go(func() error { return s.timingAdvanceLoop(s.ctx) })
	s.group.Go(func() error { return s.completionDrainLoop(s.ctx) })
	s.mu.Unlock()

	for _, name := range s.cfg.ForceLoad {
		if _, err := s.Load(name); err != nil {
			s.log.Warnf("system: force_load %q failed: %v", name, err)
		}
	}
	for _, name := range s.cfg.Startup {
		if _, err := s.Load(name); err != nil {
			s.log.Warnf("system: startup %q failed: %v", name, err)
		}
	}
	return nil
}

// Load resolves imageID through the installed Loader, creates a suspended
// guest Process with a committed code chunk sized to the image, starts its
// first thread, and returns a Handle the bootstrap thread can use to refer
// to it (e.g. for Logon/RendezvousRequest).
func (s *System) Load(imageID string) (kernel.Handle, error) {
	s.mu.Lock()
	loader := s.loader
	version := s.version
	s.mu.Unlock()

	img, err := loader.Load(s.ctx, imageID)
	if err != nil {
		return 0, fmt.Errorf("system: load %q: %w", imageID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	uid := kernel.UID{img.UID1, img.UID2, img.UID3}
	name := img.Name
	if name == "" {
		name = imageID
	}
	procID := s.kernel.CreateProcess(name, 0, uid, img.CmdLine)

	space := memory.New(version.ramCodeBase())
	s.spaces[procID] = space

	codeSize := img.CodeSize
	if codeSize == 0 {
		codeSize = 4096
	}
	codeChunk, err := space.NewChunk(name+":code", codeSize)
	if err != nil {
		return 0, fmt.Errorf("system: map code chunk for %q: %w", imageID, err)
	}
	if _, err := codeChunk.Commit(codeSize); err != nil {
		return 0, fmt.Errorf("system: commit code chunk for %q: %w", imageID, err)
	}
	chunkID := s.kernel.CreateChunk(name+":code", codeSize, codeChunk.ID())
	s.kernel.Commit(chunkID, codeSize)

	threadID, ok := s.kernel.CreateThread(procID, name+":main", 0, chunkID)
	if !ok {
		return 0, fmt.Errorf("system: create main thread for %q", imageID)
	}
	s.kernel.Resume(threadID)
	s.kernel.RunProcess(procID)

	h, kerr := s.kernel.OpenByName(s.bootThread, kernel.KindProcess, name)
	if kerr != kernel.KErrNone {
		return 0, fmt.Errorf("system: open handle to process %q: %d", imageID, kerr)
	}
	return h, nil
}

// Loop drives one iteration of the cooperative scheduler from the guest
// goroutine: pick the highest-priority ready thread. The virtual clock and
// the completion queue are advanced/drained by the two background drivers
// Init started; Loop only ever reads their effects through Reschedule, so
// guest-visible state still only changes at a single, serialized
// kernel-entry point. Returns 1 to keep iterating, 0 once RequestExit has
// been honored and nothing more is runnable.
func (s *System) Loop() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.kernel.Reschedule()

	if s.kernel.ShouldTerminate() {
		if _, ok := s.kernel.CurrentThread(); !ok {
			return 0
		}
	}
	return 1
}

// timingAdvanceLoop periodically advances the virtual clock. Firing a due
// event only ever calls Kernel.PostCompletion, which just appends to a
// queue under the kernel's lock — it never mutates thread/object state
// directly, preserving "mapping changes only happen at kernel-entry".
func (s *System) timingAdvanceLoop(ctx context.Context) error {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.clockMu.Lock()
			s.clock.Advance(1)
			s.clockMu.Unlock()
		}
	}
}

// completionDrainLoop periodically applies whatever PostCompletion calls
// have queued up (from timers, or any future async IO source) to the
// threads actually waiting on them.
func (s *System) completionDrainLoop(ctx context.Context) error {
	t := time.NewTicker(tickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.mu.Lock()
			s.kernel.ProcessingRequests()
			s.mu.Unlock()
		}
	}
}

// Shutdown requests the run loop stop and waits for the background
// drivers to return.
func (s *System) Shutdown() error {
	s.mu.Lock()
	if s.kernel != nil {
		s.kernel.RequestExit()
	}
	cancel := s.cancel
	group := s.group
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group != nil {
		return group.Wait()
	}
	return nil
}

// RequestExit asks the run loop to stop at the next safe point, without
// waiting for it.
func (s *System) RequestExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kernel != nil {
		s.kernel.RequestExit()
	}
}

// Mount attaches a VFS-backed drive. media/attrib mirror the guest-visible
// RFs::Drive info; path is meaningful only for MediaHostDir.
func (s *System) Mount(drive Drive, media Media, path string, attrib uint32, vfs extern.VFS) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vfs == nil {
		vfs = extern.NullVFS{}
	}
	s.drives[drive] = mount{media: media, path: path, attrib: attrib, vfs: vfs}
}

// InstallPackage installs a SIS-like package onto drive from a guest path.
// The SIS parser lives outside this module; this records the intent to
// install and reports whether the target drive is mounted, without
// pretending to parse the format.
func (s *System) InstallPackage(path16 string, drive Drive) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.drives[drive]
	if ok {
		s.log.Infof("system: install_package %q -> drive %c (stub)", path16, drive)
	}
	return ok
}

// InstallRpkg installs a ROM package image. Like InstallPackage, the
// archive format itself is out of scope.
func (s *System) InstallRpkg(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log.Infof("system: install_rpkg %q (stub)", path)
	return true
}

// LoadRom mounts path as drive z's ROM-backed filesystem.
func (s *System) LoadRom(path string) bool {
	s.Mount('z', MediaROM, path, 0, extern.NullVFS{})
	return true
}

// clockDriver adapts the virtual clock to the kernel's TimerDriver
// contract under the clock's own lock.
type clockDriver struct {
	s *System
}

func (d *clockDriver) Schedule(ticks uint64, fn func()) uint64 {
	d.s.clockMu.Lock()
	defer d.s.clockMu.Unlock()
	return uint64(d.s.clock.After(timing.Ticks(ticks), func(timing.Ticks) { fn() }))
}

func (d *clockDriver) Cancel(id uint64) bool {
	d.s.clockMu.Lock()
	defer d.s.clockMu.Unlock()
	return d.s.clock.Cancel(timing.EventID(id))
}

// Kernel exposes the underlying Kernel for services (the window server
// adapter, tests) that need direct access beyond the façade's surface.
func (s *System) Kernel() *kernel.Kernel { return s.kernel }

// Window exposes the window server instance Init created.
func (s *System) Window() *window.Server { return s.window }
