//go:build unix

package memory

import "golang.org/x/sys/unix"

// allocArena backs a Chunk's committed/reserved region with a real
// anonymous mmap, so page-granular semantics are enforced by the host
// kernel rather than simulated over a slice.
func allocArena(n uint32) ([]byte, error) {
	return unix.Mmap(-1, 0, int(n), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

func freeArena(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munmap(b)
}
