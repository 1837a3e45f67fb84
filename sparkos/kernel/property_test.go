package kernel

import (
	"bytes"
	"testing"
)

func TestPropertyBinarySetNotifiesAndClears(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)

	k.Define(1, 2, PropertyBin, 16)
	status := NewRequestStatus(th, 0, nil)
	if err := k.Subscribe(1, 2, status); err != KErrNone {
		t.Fatalf("Subscribe = %v; want KErrNone", err)
	}

	if err := k.SetBin(1, 2, []byte("hello")); err != KErrNone {
		t.Fatalf("SetBin = %v; want KErrNone", err)
	}
	if status.Pending() {
		t.Fatalf("status still pending after SetBin")
	}
	if status.Code() != KErrNone {
		t.Fatalf("status.Code() = %v; want KErrNone", status.Code())
	}
	got, err := k.GetBin(1, 2)
	if err != KErrNone || !bytes.Equal(got, []byte("hello")) {
		t.Fatalf("GetBin() = %q, %v; want \"hello\", KErrNone", got, err)
	}

	// One-shot: the fired subscription was cleared; a fresh subscriber is
	// completed by the next Set.
	status2 := NewRequestStatus(th, 0, nil)
	if err := k.Subscribe(1, 2, status2); err != KErrNone {
		t.Fatalf("Subscribe = %v", err)
	}
	if err := k.SetBin(1, 2, []byte("world")); err != KErrNone {
		t.Fatalf("SetBin = %v", err)
	}
	if status2.Pending() {
		t.Fatalf("status2 should have completed on second SetBin")
	}
}

func TestPropertyBinaryOverflowRejected(t *testing.T) {
	k := New(nil)
	k.Define(3, 4, PropertyBin, 4)
	if err := k.SetBin(3, 4, []byte("toolong")); err != KErrOverflow {
		t.Fatalf("SetBin(len 7, max 4) = %v; want KErrOverflow", err)
	}
}

func TestPropertyTypeMismatchRejected(t *testing.T) {
	k := New(nil)
	k.Define(5, 6, PropertyInt, 0)
	if err := k.SetBin(5, 6, []byte("x")); err != KErrArgument {
		t.Fatalf("SetBin on int property = %v; want KErrArgument", err)
	}
	if _, err := k.GetBin(5, 6); err != KErrNotFound {
		t.Fatalf("GetBin on int property = %v; want KErrNotFound", err)
	}
}

func TestRequestStatusCompletesAtMostOnce(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	status := NewRequestStatus(th, 0, nil)

	k.Complete(status, KErrNone)
	if status.Pending() {
		t.Fatalf("status still pending after first Complete")
	}
	k.Complete(status, KErrGeneral)
	if status.Code() != KErrNone {
		t.Fatalf("status.Code() = %v after second Complete; want unchanged KErrNone", status.Code())
	}

	thr, _ := k.Thread(th)
	if thr.requestSemaphore != 1 {
		t.Fatalf("requestSemaphore = %d; want 1 (only the first completion counts)", thr.requestSemaphore)
	}
}
