package kernel

// Chunk is a named contiguous region of guest virtual memory. The kernel
// object here only tracks the bookkeeping (size, committed length, and the
// name other kernel calls resolve); the actual bytes are backed by
// package memory, referenced opaquely through backingID so this package
// never needs to import it.
type Chunk struct {
	object

	maxSize   uint32
	committed uint32
	backingID uint64 // opaque key into the memory package's chunk table
}

func (c *Chunk) MaxSize() uint32   { return c.maxSize }
func (c *Chunk) Committed() uint32 { return c.committed }
func (c *Chunk) BackingID() uint64 { return c.backingID }

// CreateChunk registers a Chunk kernel object. backingID is whatever the
// memory subsystem assigned the real allocation (0 if the caller has none,
// e.g. unit tests that only exercise handle bookkeeping).
func (k *Kernel) CreateChunk(name string, maxSize uint32, backingID uint64) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	c := &Chunk{
		object:    object{kind: KindChunk, name: name, owner: OwnerProcess},
		maxSize:   maxSize,
		backingID: backingID,
	}
	id := k.chunks.add(c)
	c.id = id
	if name != "" {
		k.names[name] = ref{kind: KindChunk, id: id}
	}
	return id
}

// Commit grows a chunk's committed length, capped at maxSize.
func (k *Kernel) Commit(chunkID objectID, bytes uint32) (uint32, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	c, ok := k.chunks.get(chunkID)
	if !ok {
		return 0, KErrBadHandle
	}
	newLen := c.committed + bytes
	if newLen > c.maxSize {
		return c.committed, KErrNoMemory
	}
	c.committed = newLen
	return c.committed, KErrNone
}
