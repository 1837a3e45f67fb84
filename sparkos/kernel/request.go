package kernel

// GuestMemory is the write-through target for a RequestStatus's completion
// cell. The real guest address space lives in package memory; kernel only
// needs the ability to poke one 32-bit cell into it, so it depends on this
// narrow structural interface instead of importing memory directly.
type GuestMemory interface {
	WriteInt32(addr uint32, v int32) error
	ReadInt32(addr uint32) (int32, error)
	ReadBytes(addr uint32, n int) ([]byte, error)
	WriteBytes(addr uint32, b []byte) (int, error)
}

// RequestStatus is the completion cell of an asynchronous kernel call. It
// transitions from Pending to Completed at most once; Kernel.Complete is
// the only code path allowed to make that transition, so every caller
// (timers, IPC, IO) funnels through one place that also wakes the owner.
type RequestStatus struct {
	owner   objectID
	addr    uint32
	mem     GuestMemory
	pending bool
	code    KErr
}

// NewRequestStatus returns a Pending status owned by owner. addr/mem may be
// the zero value when the status has no guest-memory backing (e.g. in unit
// tests driving the kernel directly).
func NewRequestStatus(owner objectID, addr uint32, mem GuestMemory) *RequestStatus {
	return &RequestStatus{owner: owner, addr: addr, mem: mem, pending: true}
}

// Pending reports whether the status has not yet been completed.
func (s *RequestStatus) Pending() bool { return s.pending }

// Code returns the last completion code; meaningless while Pending.
func (s *RequestStatus) Code() KErr { return s.code }

// complete performs the guest-visible half of completion: writing the code
// and flipping to non-pending. It is idempotent by construction — callers
// (Kernel.Complete) must check Pending() first to preserve "completes at
// most once".
func (s *RequestStatus) complete(code KErr) {
	s.pending = false
	s.code = code
	if s.mem != nil {
		_ = s.mem.WriteInt32(s.addr, int32(code))
	}
}
