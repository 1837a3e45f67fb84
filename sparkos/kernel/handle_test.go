package kernel

import "testing"

func TestCloseHandleDestroysUnreferencedObject(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	chunkID := k.CreateChunk("heap", 4096, 0)
	h, ok := k.OpenHandle(th, ref{kind: KindChunk, id: chunkID}, false)
	if !ok {
		t.Fatalf("OpenHandle failed")
	}

	if _, ok := k.ResolveHandle(th, h); !ok {
		t.Fatalf("ResolveHandle failed before close")
	}

	if err := k.CloseHandle(th, h); err != KErrNone {
		t.Fatalf("CloseHandle = %v", err)
	}
	if _, ok := k.ResolveHandle(th, h); ok {
		t.Fatalf("ResolveHandle succeeded after close; handle should be dangling")
	}
	if _, ok := k.chunks.get(chunkID); ok {
		t.Fatalf("chunk should have been destroyed once its last handle closed")
	}
}

func TestDuplicateHandleKeepsObjectAliveUntilBothClosed(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	semID := k.CreateSemaphore("s", 0)
	h1, ok := k.OpenHandle(th, ref{kind: KindSemaphore, id: semID}, false)
	if !ok {
		t.Fatalf("OpenHandle failed")
	}
	h2, err := k.DuplicateHandle(th, h1, false)
	if err != KErrNone {
		t.Fatalf("DuplicateHandle = %v", err)
	}

	if err := k.CloseHandle(th, h1); err != KErrNone {
		t.Fatalf("CloseHandle(h1) = %v", err)
	}
	if _, ok := k.semaphores.get(semID); !ok {
		t.Fatalf("semaphore destroyed too early; h2 still open")
	}

	if err := k.CloseHandle(th, h2); err != KErrNone {
		t.Fatalf("CloseHandle(h2) = %v", err)
	}
	if _, ok := k.semaphores.get(semID); ok {
		t.Fatalf("semaphore should be destroyed once both handles are closed")
	}
}

func TestHandleIndicesAreNotReusedWhileOpen(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	a := k.CreateSemaphore("a", 0)
	b := k.CreateSemaphore("b", 0)
	ha, _ := k.OpenHandle(th, ref{kind: KindSemaphore, id: a}, false)
	hb, _ := k.OpenHandle(th, ref{kind: KindSemaphore, id: b}, false)
	if ha == hb {
		t.Fatalf("two simultaneously open handles got the same value: %d", ha)
	}
}
