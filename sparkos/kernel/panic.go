package kernel

import "fmt"

// FatalInfo describes a Fatal condition recovered while running one guest
// process: a corrupt page table entry, an assertion inside the kernel
// object model, or any host-side panic escaping a kernel call.
type FatalInfo struct {
	ProcessID objectID
	Value     any
	Stack     []byte
}

// FatalHandler is invoked at most once per process (Guard recovers and
// calls it, then lets the caller decide how to unwind). It must not panic.
type FatalHandler func(FatalInfo)

// Guard runs fn, recovering any panic as a Fatal condition scoped to
// processID: a fatal in one guest process terminates that process only,
// the emulator continues. The process is marked exited with KErrDied and
// every thread still registered under it is force-stopped.
func (k *Kernel) Guard(processID objectID, fn func(), onFatal FatalHandler) {
	defer func() {
		v := recover()
		if v == nil {
			return
		}
		info := FatalInfo{ProcessID: processID, Value: v, Stack: captureStack()}
		k.killProcess(processID, KErrDied)
		if onFatal != nil {
			onFatal(info)
		}
	}()
	fn()
}

func (k *Kernel) killProcess(processID objectID, code KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.processes.get(processID)
	if !ok {
		return
	}
	k.log.Errorf("process %d (%s) killed: %d", processID, p.name, code)
	p.exited = true
	p.exitCode = int32(code)
	for _, tid := range p.threads {
		k.exitThreadLocked(tid, int32(code))
	}
}

func (i FatalInfo) String() string {
	return fmt.Sprintf("fatal in process %d: %v", i.ProcessID, i.Value)
}
