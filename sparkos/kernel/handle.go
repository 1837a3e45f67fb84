package kernel

// Handle is a small integer naming a kernel object from the point of view
// of one process or thread. The top bit selects which table the handle was
// issued from: a thread-local table (set) or the owning process's shared
// table (clear). Handle values are otherwise opaque to guest code.
type Handle uint32

const handleLocalBit Handle = 1 << 31

// Local reports whether h was issued from a thread-local handle table.
func (h Handle) Local() bool { return h&handleLocalBit != 0 }

func (h Handle) index() uint32 { return uint32(h &^ handleLocalBit) }

// handleTable maps small integers to kernel-object references. Entries are
// never reused while still open: index allocation only reuses a slot after
// an explicit close, exactly like the real handle table's reuse rule.
type handleTable struct {
	entries map[uint32]ref
	free    []uint32
	next    uint32
	local   bool
}

func newHandleTable(local bool) *handleTable {
	return &handleTable{entries: make(map[uint32]ref), local: local}
}

func (t *handleTable) insert(r ref) Handle {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		t.next++
		idx = t.next
	}
	t.entries[idx] = r
	h := Handle(idx)
	if t.local {
		h |= handleLocalBit
	}
	return h
}

func (t *handleTable) lookup(h Handle) (ref, bool) {
	if h.Local() != t.local {
		return ref{}, false
	}
	r, ok := t.entries[h.index()]
	return r, ok
}

// close removes h from the table, returning the reference it held so the
// caller can decide whether the underlying object should be destroyed.
func (t *handleTable) close(h Handle) (ref, bool) {
	if h.Local() != t.local {
		return ref{}, false
	}
	idx := h.index()
	r, ok := t.entries[idx]
	if !ok {
		return ref{}, false
	}
	delete(t.entries, idx)
	t.free = append(t.free, idx)
	return r, true
}

// count returns the number of currently open handles referencing id.
func (t *handleTable) count(target ref) int {
	n := 0
	for _, r := range t.entries {
		if r == target {
			n++
		}
	}
	return n
}
