package kernel

// TimerDriver is the virtual-clock half of Sleep/After: the kernel arms
// callbacks on it by tick count and cancels them by the id Schedule
// returned. package timing's System, behind a small adapter owned by the
// system façade, is the real implementation; tests supply their own.
//
// Schedule and Cancel are always called with the kernel lock released —
// the driver takes the clock's own lock, and the clock fires callbacks
// that re-enter the kernel through PostCompletion.
type TimerDriver interface {
	Schedule(ticks uint64, fn func()) uint64
	Cancel(id uint64) bool
}

// Timer is the kernel object behind a guest RTimer handle: one outstanding
// timed request at a time, owned by the thread that created it.
type Timer struct {
	object

	owner  objectID
	status *RequestStatus
}

// SetTimerDriver installs the virtual-clock driver Sleep/After arm their
// expiries on. Without one, timed calls fail with KErrNotSupported.
func (k *Kernel) SetTimerDriver(d TimerDriver) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.timerDriver = d
}

// CreateTimer registers a Timer owned by ownerThread.
func (k *Kernel) CreateTimer(ownerThread objectID) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	t := &Timer{object: object{kind: KindTimer, owner: OwnerThread}, owner: ownerThread}
	id := k.timers.add(t)
	t.id = id
	return id
}

// After arms an asynchronous timeout for threadID: after ticks virtual
// ticks, status is completed with KErrNone through the normal
// PostCompletion/ProcessingRequests path. CancelSleep on the same status
// dequeues the armed event.
func (k *Kernel) After(threadID objectID, status *RequestStatus, ticks uint64) KErr {
	k.mu.Lock()
	driver := k.timerDriver
	_, haveThread := k.threads.get(threadID)
	k.mu.Unlock()
	if driver == nil {
		return KErrNotSupported
	}
	if status == nil || !haveThread {
		return KErrArgument
	}

	evID := driver.Schedule(ticks, func() {
		k.PostCompletion(status, KErrNone)
	})

	k.mu.Lock()
	if status.pending {
		k.timeouts[status] = evID
	}
	k.mu.Unlock()
	return KErrNone
}

// SleepFor is the blocking form of After: the thread parks in Wait until
// the timeout fires (or the status is cancelled or completed for any other
// reason).
func (k *Kernel) SleepFor(threadID objectID, status *RequestStatus, ticks uint64) KErr {
	k.Sleep(threadID, status)
	return k.After(threadID, status, ticks)
}

// TimerAfter arms timerID's one outstanding request. A timer with a
// request still pending rejects a second arm with KErrInUse.
func (k *Kernel) TimerAfter(timerID objectID, status *RequestStatus, ticks uint64) KErr {
	k.mu.Lock()
	tm, ok := k.timers.get(timerID)
	if !ok {
		k.mu.Unlock()
		return KErrBadHandle
	}
	if tm.status != nil && tm.status.pending {
		k.mu.Unlock()
		return KErrInUse
	}
	tm.status = status
	owner := tm.owner
	k.mu.Unlock()
	return k.After(owner, status, ticks)
}

// TimerCancel cancels timerID's outstanding request, if any, completing
// its status with KErrCancel and dequeueing the armed clock event.
func (k *Kernel) TimerCancel(timerID objectID) bool {
	k.mu.Lock()
	tm, ok := k.timers.get(timerID)
	var status *RequestStatus
	if ok {
		status = tm.status
		tm.status = nil
	}
	k.mu.Unlock()
	if status == nil {
		return false
	}
	return k.CancelSleep(status)
}
