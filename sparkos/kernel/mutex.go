package kernel

// Mutex is a recursive, priority-inheriting lock. Waiters queue in arrival
// order; Signal always wakes the highest real-priority waiter, ties broken
// by arrival order.
type Mutex struct {
	object

	owner     objectID
	holdCount int
	waiters   []objectID
}

// CreateMutex registers an unheld Mutex.
func (k *Kernel) CreateMutex(name string) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	m := &Mutex{object: object{kind: KindMutex, name: name, owner: OwnerProcess}}
	id := k.mutexes.add(m)
	m.id = id
	if name != "" {
		k.names[name] = ref{kind: KindMutex, id: id}
	}
	return id
}

// MutexWait acquires mutexID for threadID, blocking (entering wait_mutex)
// if it is held by a different thread. Returns false if threadID ends up
// blocked rather than owning the mutex.
func (k *Kernel) MutexWait(threadID, mutexID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.mutexes.get(mutexID)
	t, tok := k.threads.get(threadID)
	if !ok || !tok {
		return false
	}

	if m.owner == 0 {
		m.owner = threadID
		m.holdCount = 1
		t.heldMutexes = append(t.heldMutexes, mutexID)
		return true
	}
	if m.owner == threadID {
		m.holdCount++
		return true
	}

	m.waiters = append(m.waiters, threadID)
	if t.suspendCount > 0 {
		t.state = StateWaitMutexSuspend
	} else {
		t.state = StateWaitMutex
	}
	t.waitingOn = ref{kind: KindMutex, id: mutexID}
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}

	k.propagateInheritLocked(t.nominalPriority, m.owner, 0)
	return false
}

// propagateInheritLocked raises ownerID's real priority to nominal if
// lower, then follows ownerID's own wait-on-mutex chain so inheritance
// cascades through nested locks.
func (k *Kernel) propagateInheritLocked(nominal int32, ownerID objectID, depth int) {
	if depth > 64 {
		return // guards against a cyclic wait graph that should never exist
	}
	owner, ok := k.threads.get(ownerID)
	if !ok {
		return
	}
	if nominal > owner.realPriority {
		owner.realPriority = nominal
	}
	if !owner.state.waiting() || owner.waitingOn.kind != KindMutex {
		return
	}
	next, ok := k.mutexes.get(owner.waitingOn.id)
	if !ok || next.owner == 0 {
		return
	}
	k.propagateInheritLocked(nominal, next.owner, depth+1)
}

// MutexSignal releases one hold of mutexID. At hold count zero it transfers
// ownership to the highest-priority waiter (FIFO among ties) and wakes it.
func (k *Kernel) MutexSignal(threadID, mutexID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	m, ok := k.mutexes.get(mutexID)
	if !ok || m.owner != threadID {
		return false
	}
	m.holdCount--
	if m.holdCount > 0 {
		return true
	}

	oldOwner, _ := k.threads.get(threadID)
	k.removeHeldLocked(oldOwner, mutexID)
	m.owner = 0

	if next, ok := k.popHighestWaiterLocked(m); ok {
		m.owner = next
		m.holdCount = 1
		nt, _ := k.threads.get(next)
		nt.heldMutexes = append(nt.heldMutexes, mutexID)
		if nt.suspendCount > 0 {
			nt.state = nt.preWaitSuspendTarget()
		} else {
			nt.state = StateReady
			k.sched.enqueue(next)
		}
		k.recomputeRealPriorityLocked(next)
	}
	k.recomputeRealPriorityLocked(threadID)
	return true
}

// preWaitSuspendTarget is used when a signaled waiter is concurrently
// suspended: it becomes the owner but stays parked, matching the *_suspend
// "resume restores the prior wait state" rule applied in reverse.
func (t *Thread) preWaitSuspendTarget() State {
	return StateHoldMutexPending
}

func (k *Kernel) removeHeldLocked(t *Thread, mutexID objectID) {
	if t == nil {
		return
	}
	for i, id := range t.heldMutexes {
		if id == mutexID {
			t.heldMutexes = append(t.heldMutexes[:i], t.heldMutexes[i+1:]...)
			return
		}
	}
}

// popHighestWaiterLocked removes and returns the highest real-priority
// waiter of m (ties -> earliest arrival, i.e. lowest index).
func (k *Kernel) popHighestWaiterLocked(m *Mutex) (objectID, bool) {
	if len(m.waiters) == 0 {
		return 0, false
	}
	bestIdx := 0
	bestPri := k.realOfLocked(m.waiters[0])
	for i, id := range m.waiters[1:] {
		if p := k.realOfLocked(id); p > bestPri {
			bestIdx, bestPri = i+1, p
		}
	}
	id := m.waiters[bestIdx]
	m.waiters = append(m.waiters[:bestIdx], m.waiters[bestIdx+1:]...)
	return id, true
}

func (k *Kernel) nominalOfLocked(id objectID) int32 {
	t, ok := k.threads.get(id)
	if !ok {
		return -1 << 31
	}
	return t.nominalPriority
}

func (k *Kernel) realOfLocked(id objectID) int32 {
	t, ok := k.threads.get(id)
	if !ok {
		return -1 << 31
	}
	return t.realPriority
}

// recomputeRealPriorityLocked implements the design note's O(k)
// recomputation: threadID's real priority is its own nominal priority,
// raised to the nominal priority of every remaining waiter across every
// mutex it still holds.
func (k *Kernel) recomputeRealPriorityLocked(threadID objectID) {
	t, ok := k.threads.get(threadID)
	if !ok {
		return
	}
	best := t.nominalPriority
	for _, mutexID := range t.heldMutexes {
		m, ok := k.mutexes.get(mutexID)
		if !ok {
			continue
		}
		for _, waiterID := range m.waiters {
			if p := k.nominalOfLocked(waiterID); p > best {
				best = p
			}
		}
	}
	t.realPriority = best
}
