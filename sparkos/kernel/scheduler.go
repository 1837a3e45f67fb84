package kernel

// scheduler is the cooperative ready queue: a set of Ready thread ids
// picked by highest real priority, ties broken by round-robin (the thread
// that has waited longest since it last ran goes first). It never blocks
// and never spawns a host thread — Kernel drives it synchronously from a
// single "guest goroutine".
type scheduler struct {
	ready []objectID // FIFO among threads of equal real priority
}

func newScheduler() *scheduler {
	return &scheduler{}
}

func (s *scheduler) enqueue(id objectID) {
	for _, existing := range s.ready {
		if existing == id {
			return
		}
	}
	s.ready = append(s.ready, id)
}

func (s *scheduler) remove(id objectID) {
	for i, existing := range s.ready {
		if existing == id {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			return
		}
	}
}

// pick returns the id of the highest real-priority ready thread, using
// priorityOf to resolve priorities and breaking ties in favor of whichever
// candidate appears earliest in the ready slice (oldest-enqueued-first,
// since enqueue always appends).
func (s *scheduler) pick(priorityOf func(objectID) int32) (objectID, bool) {
	if len(s.ready) == 0 {
		return 0, false
	}
	best := s.ready[0]
	bestPri := priorityOf(best)
	for _, id := range s.ready[1:] {
		if p := priorityOf(id); p > bestPri {
			best, bestPri = id, p
		}
	}
	return best, true
}
