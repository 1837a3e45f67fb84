package kernel

// Mode is an ARM processor mode, encoded the way the saved CPSR's mode
// bits identify it.
type Mode uint8

const (
	ModeUser Mode = iota
	ModeFIQ
	ModeIRQ
	ModeSupervisor
	ModeAbort
	ModeUndefined
	ModeSystem
)

// ARMContext is the full per-thread register file the scheduler saves and
// restores on a context switch: the sixteen general registers, the program
// status register, and the banked registers of every privileged mode. The
// CPU engine (out of scope here) reads the whole struct into its register
// file on restore and writes it back on save, so a switch is one struct
// copy regardless of how many threads exist.
type ARMContext struct {
	GPR  [16]uint32
	CPSR uint32
	Mode Mode

	// Banked registers. FIQ shadows r8-r14; the other privileged modes
	// shadow r13-r14 plus a saved program status register each.
	BankedFIQ [7]uint32
	BankedIRQ [2]uint32
	BankedSVC [2]uint32
	BankedABT [2]uint32
	BankedUND [2]uint32

	SPSRFIQ uint32
	SPSRIRQ uint32
	SPSRSVC uint32
	SPSRABT uint32
	SPSRUND uint32
}

// PC returns the saved program counter (r15).
func (c *ARMContext) PC() uint32 { return c.GPR[15] }

// SP returns the saved stack pointer (r13) of the saved mode.
func (c *ARMContext) SP() uint32 { return c.GPR[13] }

// SaveContext stores the CPU engine's register file into threadID's slot,
// the first half of a context switch.
func (k *Kernel) SaveContext(threadID objectID, ctx *ARMContext) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return false
	}
	t.ctx = *ctx
	return true
}

// LoadContext returns a copy of threadID's saved register file for the CPU
// engine to restore, the second half of a context switch.
func (k *Kernel) LoadContext(threadID objectID) (ARMContext, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return ARMContext{}, false
	}
	return t.ctx, true
}
