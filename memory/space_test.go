package memory

import "testing"

func TestChunkCommitAndReadWrite(t *testing.T) {
	s := New(0)
	c, err := s.NewChunk("stack", 8192)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if _, err := c.Commit(16); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := s.WriteInt32(c.Base(), 42); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	v, err := s.ReadInt32(c.Base())
	if err != nil || v != 42 {
		t.Fatalf("ReadInt32 = %d, %v, want 42, nil", v, err)
	}

	if _, err := s.WriteBytes(c.Base()+4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}
	b, err := s.ReadBytes(c.Base()+4, 4)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("ReadBytes = %v, want %v", b, want)
		}
	}
}

func TestUncommittedAddressRejected(t *testing.T) {
	s := New(0)
	c, err := s.NewChunk("heap", 4096)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if _, err := s.ReadInt32(c.Base()); err != ErrNotCommitted {
		t.Fatalf("got %v, want ErrNotCommitted", err)
	}
}

func TestCommitBeyondReservationFails(t *testing.T) {
	s := New(0)
	c, err := s.NewChunk("small", pageSize)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if _, err := c.Commit(pageSize + 1); err == nil {
		t.Fatalf("expected commit beyond reservation to fail")
	}
}

func TestOutOfRangeAddress(t *testing.T) {
	s := New(0)
	if _, err := s.NewChunk("a", pageSize); err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if _, err := s.ReadInt32(0xffffffff); err != ErrOutOfRange {
		t.Fatalf("got %v, want ErrOutOfRange", err)
	}
}
