package kernel

import "testing"

func TestCancelSleepCompletesWithCancelCode(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	status := NewRequestStatus(th, 0, nil)
	k.Sleep(th, status)

	thr, _ := k.Thread(th)
	if thr.state != StateWait {
		t.Fatalf("thread.state = %v; want wait after Sleep", thr.state)
	}

	if !k.CancelSleep(status) {
		t.Fatalf("CancelSleep returned false")
	}
	if status.Pending() || status.Code() != KErrCancel {
		t.Fatalf("status = pending=%v code=%v; want completed with KErrCancel", status.Pending(), status.Code())
	}

	// Idempotent: cancelling an already-completed status is a no-op, not a
	// second completion.
	if k.CancelSleep(status) {
		t.Fatalf("CancelSleep on an already-completed status should return false")
	}
}

func TestLogonFiresOnExit(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	target, _ := k.CreateThread(proc, "", 0, 0)
	subscriber, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(target)
	k.Resume(subscriber)

	status := NewRequestStatus(subscriber, 0, nil)
	if !k.Logon(target, subscriber, status) {
		t.Fatalf("Logon failed")
	}
	if status.Pending() == false {
		t.Fatalf("status should still be pending before the target exits")
	}

	k.ExitThread(target, 7)
	if status.Pending() || status.Code() != KErr(7) {
		t.Fatalf("status = pending=%v code=%v; want completed with exit code 7", status.Pending(), status.Code())
	}
}
