// Package memory implements the emulator's guest address-space mapping: a
// set of named Chunks, each a contiguous run of guest virtual addresses
// backed by real host memory, with committed/reserved page semantics.
//
// The ARM CPU engine that reads and writes this memory as instructions
// execute lives outside this package; Space only has to offer a
// byte-addressable view that the kernel's RequestStatus completion cells
// and IPC argument slots can read and write through the narrow
// kernel.GuestMemory contract.
package memory

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// pageSize is the granularity chunk reservations round up to, matching the
// committed/reserved page semantics described in the design.
const pageSize = 4096

var (
	ErrOutOfRange  = errors.New("memory: address out of range")
	ErrNotCommitted = errors.New("memory: address not committed")
)

// Chunk is one named, contiguously-addressed region of the guest address
// space.
type Chunk struct {
	id        uint64
	name      string
	base      uint32
	reserved  uint32
	committed uint32
	bytes     []byte
}

func (c *Chunk) ID() uint64        { return c.id }
func (c *Chunk) Base() uint32      { return c.base }
func (c *Chunk) Reserved() uint32  { return c.reserved }
func (c *Chunk) Committed() uint32 { return c.committed }

// Commit grows the chunk's committed length by n bytes, rounded up to a
// whole page, capped at its reserved size.
func (c *Chunk) Commit(n uint32) (uint32, error) {
	grown := roundUpPage(c.committed + n)
	if grown > c.reserved {
		return c.committed, fmt.Errorf("memory: commit %d bytes exceeds reservation of chunk %q", n, c.name)
	}
	c.committed = grown
	return c.committed, nil
}

func roundUpPage(n uint32) uint32 {
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}

// Space is the guest process's (or the emulator-wide, for global chunks)
// address space: a bump-allocated set of Chunks plus byte-level
// read/write, serving as the kernel.GuestMemory backing for RequestStatus
// cells and IPC argument slots.
type Space struct {
	chunks  map[uint64]*Chunk
	nextID  uint64
	nextVA  uint32
}

// defaultBaseVA is where the first chunk in a Space is mapped when New is
// given 0; real Symbian splits this by EPOC version (RAM code base,
// shared-data region), which the system façade selects via
// EpocVersion.ramCodeBase before constructing chunks for a given process.
const defaultBaseVA = 0x00400000

// New returns an empty Space starting allocation at baseVA (defaultBaseVA
// if 0).
func New(baseVA uint32) *Space {
	if baseVA == 0 {
		baseVA = defaultBaseVA
	}
	return &Space{chunks: make(map[uint64]*Chunk), nextVA: baseVA}
}

// NewChunk reserves a chunk of reserve bytes (rounded up to a page) and
// returns it. The backing store is real host memory: an anonymous mmap on
// unix hosts (arena_unix.go), a plain slice elsewhere (arena_other.go).
func (s *Space) NewChunk(name string, reserve uint32) (*Chunk, error) {
	reserve = roundUpPage(reserve)
	data, err := allocArena(reserve)
	if err != nil {
		return nil, fmt.Errorf("memory: allocate chunk %q: %w", name, err)
	}
	s.nextID++
	c := &Chunk{id: s.nextID, name: name, base: s.nextVA, reserved: reserve, bytes: data}
	s.chunks[c.id] = c
	s.nextVA += reserve
	return c, nil
}

// FreeChunk releases a chunk's backing memory. Callers must ensure nothing
// still references addresses inside it.
func (s *Space) FreeChunk(id uint64) error {
	c, ok := s.chunks[id]
	if !ok {
		return ErrOutOfRange
	}
	delete(s.chunks, id)
	return freeArena(c.bytes)
}

func (s *Space) chunkFor(addr uint32) (*Chunk, uint32, bool) {
	for _, c := range s.chunks {
		if addr >= c.base && addr < c.base+c.reserved {
			return c, addr - c.base, true
		}
	}
	return nil, 0, false
}

func (s *Space) checkCommitted(c *Chunk, off uint32, n int) error {
	if off+uint32(n) > c.committed {
		return ErrNotCommitted
	}
	return nil
}

// ReadInt32 implements kernel.GuestMemory.
func (s *Space) ReadInt32(addr uint32) (int32, error) {
	c, off, ok := s.chunkFor(addr)
	if !ok {
		return 0, ErrOutOfRange
	}
	if err := s.checkCommitted(c, off, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(c.bytes[off : off+4])), nil
}

// WriteInt32 implements kernel.GuestMemory.
func (s *Space) WriteInt32(addr uint32, v int32) error {
	c, off, ok := s.chunkFor(addr)
	if !ok {
		return ErrOutOfRange
	}
	if err := s.checkCommitted(c, off, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(c.bytes[off:off+4], uint32(v))
	return nil
}

// ReadBytes implements kernel.GuestMemory.
func (s *Space) ReadBytes(addr uint32, n int) ([]byte, error) {
	c, off, ok := s.chunkFor(addr)
	if !ok {
		return nil, ErrOutOfRange
	}
	if err := s.checkCommitted(c, off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.bytes[off:off+uint32(n)])
	return out, nil
}

// WriteBytes implements kernel.GuestMemory.
func (s *Space) WriteBytes(addr uint32, b []byte) (int, error) {
	c, off, ok := s.chunkFor(addr)
	if !ok {
		return 0, ErrOutOfRange
	}
	if err := s.checkCommitted(c, off, len(b)); err != nil {
		return 0, err
	}
	copy(c.bytes[off:off+uint32(len(b))], b)
	return len(b), nil
}
