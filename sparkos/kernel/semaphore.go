package kernel

// Semaphore is Symbian's fast semaphore: a non-negative counter with a FIFO
// of waiters, ordered by real priority then arrival for wake-up purposes.
type Semaphore struct {
	object

	count   int
	waiters []objectID
}

// CreateSemaphore registers a Semaphore with the given initial count.
func (k *Kernel) CreateSemaphore(name string, initial int) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := &Semaphore{object: object{kind: KindSemaphore, name: name, owner: OwnerProcess}, count: initial}
	id := k.semaphores.add(s)
	s.id = id
	if name != "" {
		k.names[name] = ref{kind: KindSemaphore, id: id}
	}
	return id
}

// SemaphoreWait decrements the counter if positive, otherwise blocks
// threadID in wait_fast_sema. Returns true if the caller proceeds
// immediately without blocking.
func (k *Kernel) SemaphoreWait(threadID, semaphoreID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.semaphores.get(semaphoreID)
	t, tok := k.threads.get(threadID)
	if !ok || !tok {
		return false
	}
	if s.count > 0 {
		s.count--
		return true
	}
	s.waiters = append(s.waiters, threadID)
	t.waitingOn = ref{kind: KindSemaphore, id: semaphoreID}
	if t.suspendCount > 0 {
		t.state = StateWaitFastSemaSuspend
	} else {
		t.state = StateWaitFastSema
	}
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}
	return false
}

// SemaphoreSignal increments the counter by n and wakes up to n waiters in
// priority order (highest real priority first, ties by arrival).
func (k *Kernel) SemaphoreSignal(semaphoreID objectID, n int) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	s, ok := k.semaphores.get(semaphoreID)
	if !ok {
		return false
	}
	for i := 0; i < n; i++ {
		if len(s.waiters) == 0 {
			s.count++
			continue
		}
		id := k.popHighestPrioritySemaWaiterLocked(s)
		t, ok := k.threads.get(id)
		if !ok {
			continue
		}
		if t.suspendCount > 0 {
			t.pendingWake = true // stays parked; Resume will move it straight to Ready
		} else {
			t.state = StateReady
			k.sched.enqueue(id)
		}
	}
	return true
}

func (k *Kernel) popHighestPrioritySemaWaiterLocked(s *Semaphore) objectID {
	bestIdx := 0
	bestPri := k.realOfLocked(s.waiters[0])
	for i, id := range s.waiters[1:] {
		if p := k.realOfLocked(id); p > bestPri {
			bestIdx, bestPri = i+1, p
		}
	}
	id := s.waiters[bestIdx]
	s.waiters = append(s.waiters[:bestIdx], s.waiters[bestIdx+1:]...)
	return id
}
