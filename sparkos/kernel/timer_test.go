package kernel

import (
	"testing"

	"spark/timing"
)

// tickDriver adapts a bare timing.System to TimerDriver for tests, with no
// locking: these tests drive the clock and the kernel from one goroutine.
type tickDriver struct {
	clk *timing.System
}

func (d tickDriver) Schedule(ticks uint64, fn func()) uint64 {
	return uint64(d.clk.After(timing.Ticks(ticks), func(timing.Ticks) { fn() }))
}

func (d tickDriver) Cancel(id uint64) bool {
	return d.clk.Cancel(timing.EventID(id))
}

func TestSleepForWakesOnExpiry(t *testing.T) {
	k := New(nil)
	clk := timing.New()
	k.SetTimerDriver(tickDriver{clk: clk})

	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	status := NewRequestStatus(th, 0, nil)
	if err := k.SleepFor(th, status, 100); err != KErrNone {
		t.Fatalf("SleepFor = %v", err)
	}
	thr, _ := k.Thread(th)
	if thr.state != StateWait {
		t.Fatalf("thread.state = %v; want wait", thr.state)
	}

	clk.Advance(50)
	k.ProcessingRequests()
	if !status.Pending() {
		t.Fatalf("status completed at t=50; deadline is t=100")
	}

	clk.Advance(50)
	k.ProcessingRequests()
	if status.Pending() || status.Code() != KErrNone {
		t.Fatalf("status = pending=%v code=%v; want completed KErrNone at t=100", status.Pending(), status.Code())
	}
	thr, _ = k.Thread(th)
	if thr.state != StateReady {
		t.Fatalf("thread.state = %v; want ready after expiry", thr.state)
	}
}

func TestCancelSleepDequeuesClockEvent(t *testing.T) {
	k := New(nil)
	clk := timing.New()
	k.SetTimerDriver(tickDriver{clk: clk})

	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	status := NewRequestStatus(th, 0, nil)
	k.SleepFor(th, status, 100)

	clk.Advance(50)
	if !k.CancelSleep(status) {
		t.Fatalf("CancelSleep returned false")
	}
	if status.Pending() || status.Code() != KErrCancel {
		t.Fatalf("status = pending=%v code=%v; want completed KErrCancel at t=50", status.Pending(), status.Code())
	}
	if _, ok := clk.NextDeadline(); ok {
		t.Fatalf("timer event still queued after cancel")
	}

	// The dead event must not fire later either.
	clk.Advance(100)
	k.ProcessingRequests()
	if status.Code() != KErrCancel {
		t.Fatalf("status.Code() = %v after advancing past the old deadline; want KErrCancel", status.Code())
	}
}

func TestTimerAfterRejectsSecondArm(t *testing.T) {
	k := New(nil)
	clk := timing.New()
	k.SetTimerDriver(tickDriver{clk: clk})

	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	k.Resume(th)

	tm := k.CreateTimer(th)
	s1 := NewRequestStatus(th, 0, nil)
	if err := k.TimerAfter(tm, s1, 10); err != KErrNone {
		t.Fatalf("TimerAfter = %v", err)
	}
	s2 := NewRequestStatus(th, 0, nil)
	if err := k.TimerAfter(tm, s2, 10); err != KErrInUse {
		t.Fatalf("second TimerAfter = %v; want KErrInUse", err)
	}

	if !k.TimerCancel(tm) {
		t.Fatalf("TimerCancel returned false")
	}
	if s1.Code() != KErrCancel {
		t.Fatalf("s1.Code() = %v; want KErrCancel", s1.Code())
	}
	if err := k.TimerAfter(tm, s2, 10); err != KErrNone {
		t.Fatalf("re-arm after cancel = %v; want KErrNone", err)
	}
}

func TestAfterWithoutDriverNotSupported(t *testing.T) {
	k := New(nil)
	proc := k.CreateProcess("p", 0, UID{}, "")
	th, _ := k.CreateThread(proc, "", 0, 0)
	status := NewRequestStatus(th, 0, nil)
	if err := k.After(th, status, 10); err != KErrNotSupported {
		t.Fatalf("After with no driver = %v; want KErrNotSupported", err)
	}
}
