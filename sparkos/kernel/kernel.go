// Package kernel implements the emulator's guest kernel object model: the
// central registry of processes, threads, handles, and synchronization
// primitives that every SVC (supervisor call) ultimately touches.
//
// All mutation happens under Kernel's single global lock: at most one
// guest thread is ever "running" at a time, and the
// host need not use more than one goroutine to drive it. Of the two
// background drivers the system façade starts, timing advance only ever
// enqueues work via PostCompletion, and async completion draining applies
// that work through ProcessingRequests under the same lock; neither
// touches kernel objects directly.
package kernel

import (
	"sort"
	"sync"

	"spark/logging"
)

type propKey struct {
	category int32
	key      int32
}

// completion is one pending request-status completion posted by a
// host-side async driver (timer expiry, IO, ...) and drained by
// ProcessingRequests.
type completion struct {
	status *RequestStatus
	code   KErr
}

// Kernel is the central registry of every KernelObject and the cooperative
// scheduler that runs the guest threads referencing them.
type Kernel struct {
	mu sync.Mutex

	log logging.Logger

	processes  *arena[Process]
	threads    *arena[Thread]
	chunks     *arena[Chunk]
	mutexes    *arena[Mutex]
	semaphores *arena[Semaphore]
	properties *arena[Property]
	sessions   *arena[Session]
	servers    *arena[Server]
	messages   *arena[Message]
	timers     *arena[Timer]

	names     map[string]ref
	propIndex map[propKey]objectID

	sched             *scheduler
	current           objectID
	rescheduleWanted  bool

	timerDriver TimerDriver
	timeouts    map[*RequestStatus]uint64

	pending    []completion
	terminate  bool
	spawnImage func(imageID string) (*Process, error)
}

// New returns an empty Kernel. log may be nil (logging.Discard is used).
func New(log logging.Logger) *Kernel {
	if log == nil {
		log = logging.Discard{}
	}
	return &Kernel{
		log:        log,
		processes:  newArena[Process](),
		threads:    newArena[Thread](),
		chunks:     newArena[Chunk](),
		mutexes:    newArena[Mutex](),
		semaphores: newArena[Semaphore](),
		properties: newArena[Property](),
		sessions:   newArena[Session](),
		servers:    newArena[Server](),
		messages:   newArena[Message](),
		timers:     newArena[Timer](),
		names:      make(map[string]ref),
		propIndex:  make(map[propKey]objectID),
		timeouts:   make(map[*RequestStatus]uint64),
		sched:      newScheduler(),
	}
}

// SetImageSpawner installs the callback SpawnNewProcess uses to materialize
// a new Process from an image id. The loader itself (E32/SIS/ROM parsing)
// is out of this package's scope; the system façade wires a real loader in
// here, tests wire in a fake.
func (k *Kernel) SetImageSpawner(fn func(imageID string) (*Process, error)) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.spawnImage = fn
}

// ---- process / thread lifecycle -------------------------------------------------

// CreateProcess registers a new, initially suspended Process. The first
// Thread starts running only once RunProcess is called.
func (k *Kernel) CreateProcess(name string, priority int32, uid UID, cmdLine string) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := &Process{
		object:   object{kind: KindProcess, name: name, owner: OwnerKernel},
		handles:  newHandleTable(false),
		priority: priority,
		uid:      uid,
		cmdLine:  cmdLine,
		suspended: true,
	}
	id := k.processes.add(p)
	p.id = id
	if name != "" {
		k.names[name] = ref{kind: KindProcess, id: id}
	}
	return id
}

// CreateThread adds a Thread to an existing process in state Create. The
// thread becomes Ready only once Resume is called on it (mirroring "create
// -> ready: on resume() after construction").
func (k *Kernel) CreateThread(processID objectID, name string, nominalPriority int32, stackChunk objectID) (objectID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.processes.get(processID)
	if !ok {
		return 0, false
	}
	t := &Thread{
		object:          object{kind: KindThread, name: name, owner: OwnerProcess},
		process:         processID,
		state:           StateCreate,
		nominalPriority: nominalPriority,
		realPriority:    nominalPriority,
		stackChunk:      stackChunk,
		handles:         newHandleTable(true),
	}
	id := k.threads.add(t)
	t.id = id
	p.threads = append(p.threads, id)
	if name != "" {
		k.names[name] = ref{kind: KindThread, id: id}
	}
	return id, true
}

// Resume transitions a thread out of Create (or out of a suspend/wait
// combination) back toward Ready/running.
func (k *Kernel) Resume(threadID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.resumeLocked(threadID)
}

func (k *Kernel) resumeLocked(threadID objectID) bool {
	t, ok := k.threads.get(threadID)
	if !ok || t.exited {
		return false
	}
	if t.suspendCount > 0 {
		t.suspendCount--
	}
	if t.suspendCount > 0 {
		return true // still suspended by another holder
	}
	switch t.state {
	case StateCreate:
		t.state = StateReady
		k.sched.enqueue(threadID)
	case StateReady:
		// Suspended while Ready (or while running): back into the queue.
		k.sched.enqueue(threadID)
	case StateWaitMutexSuspend:
		if t.pendingWake {
			t.pendingWake = false
			t.state = StateReady
			k.sched.enqueue(threadID)
		} else {
			t.state = StateWaitMutex
		}
	case StateWaitFastSemaSuspend:
		if t.pendingWake {
			t.pendingWake = false
			t.state = StateReady
			k.sched.enqueue(threadID)
		} else {
			t.state = StateWaitFastSema
		}
	case StateHoldMutexPending:
		t.state = StateReady
		k.sched.enqueue(threadID)
	}
	return true
}

// Suspend increments a thread's suspend count. A Ready or Run thread moves
// to its wait-suspend counterpart only if it is concurrently blocked; a
// merely-ready thread is simply pulled out of the run queue.
func (k *Kernel) Suspend(threadID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok || t.exited {
		return false
	}
	t.suspendCount++
	switch t.state {
	case StateReady:
		k.sched.remove(threadID)
	case StateRun:
		k.sched.remove(threadID)
		t.state = StateReady
		if k.current == threadID {
			k.current = 0
		}
	case StateWaitMutex:
		t.state = StateWaitMutexSuspend
	case StateWaitFastSema:
		t.state = StateWaitFastSemaSuspend
	}
	return true
}

// SpawnNewProcess materializes a new process from imageID using the
// installed spawner and registers it. The process is created suspended.
func (k *Kernel) SpawnNewProcess(imageID string) (objectID, error) {
	k.mu.Lock()
	spawn := k.spawnImage
	k.mu.Unlock()
	if spawn == nil {
		return 0, ErrNotFound
	}
	p, err := spawn(imageID)
	if err != nil {
		return 0, err
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	p.kind = KindProcess
	p.owner = OwnerKernel
	p.suspended = true
	if p.handles == nil {
		p.handles = newHandleTable(false)
	}
	id := k.processes.add(p)
	p.id = id
	if p.name != "" {
		k.names[p.name] = ref{kind: KindProcess, id: id}
	}
	return id, nil
}

// RunProcess starts a suspended process's first thread.
func (k *Kernel) RunProcess(processID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	p, ok := k.processes.get(processID)
	if !ok || !p.suspended || len(p.threads) == 0 {
		return false
	}
	p.suspended = false
	return k.resumeLocked(p.threads[0])
}

// CurrentThread returns the id of the thread currently running, if any.
func (k *Kernel) CurrentThread() (objectID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current, k.current != 0
}

// CurrentProcess returns the process owning the current thread.
func (k *Kernel) CurrentProcess() (objectID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.current == 0 {
		return 0, false
	}
	t, ok := k.threads.get(k.current)
	if !ok {
		return 0, false
	}
	return t.process, true
}

// Thread/Process accessors used by services and tests; they hand back the
// live object under the caller's understanding that all mutation still
// goes through Kernel methods holding the global lock.
func (k *Kernel) Thread(id objectID) (*Thread, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.threads.get(id)
}

func (k *Kernel) Process(id objectID) (*Process, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.processes.get(id)
}

// ExitThread terminates a thread, notifying logon subscribers and, if it
// was the process's last thread, the process.
func (k *Kernel) ExitThread(threadID objectID, code int32) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.exitThreadLocked(threadID, code)
}

func (k *Kernel) exitThreadLocked(threadID objectID, code int32) {
	t, ok := k.threads.get(threadID)
	if !ok || t.exited {
		return
	}
	t.exited = true
	t.exitCode = code
	t.state = StateStop
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}
	k.notifySubsLocked(&t.logonSubs, KErr(code))
	k.notifySubsLocked(&t.rendezvousSub, KErr(code))

	p, ok := k.processes.get(t.process)
	if !ok {
		return
	}
	for _, id := range p.threads {
		if other, ok := k.threads.get(id); ok && !other.exited {
			return
		}
	}
	p.exited = true
	p.exitCode = code
}

func (k *Kernel) notifySubsLocked(subs *[]subscription, code KErr) {
	for _, s := range *subs {
		if s.status != nil && s.status.Pending() {
			k.completeLocked(s.status, code)
		}
	}
	*subs = nil
}

// Logon registers subscriber to be notified (via status) when target
// terminates.
func (k *Kernel) Logon(target objectID, subscriber objectID, status *RequestStatus) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(target)
	if !ok {
		return false
	}
	if t.exited {
		k.completeLocked(status, KErr(t.exitCode))
		return true
	}
	t.logonSubs = append(t.logonSubs, subscription{subscriber: subscriber, status: status})
	return true
}

// LogonCancel removes a pending logon subscription, completing it with the
// cancel code. Idempotent: a subscription already fired or absent is a
// no-op.
func (k *Kernel) LogonCancel(target objectID, status *RequestStatus) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(target)
	if !ok {
		return false
	}
	return k.cancelSubLocked(&t.logonSubs, status)
}

func (k *Kernel) cancelSubLocked(subs *[]subscription, status *RequestStatus) bool {
	for i, s := range *subs {
		if s.status == status {
			*subs = append((*subs)[:i], (*subs)[i+1:]...)
			k.completeLocked(status, KErrCancel)
			return true
		}
	}
	return false
}

// Rendezvous completes every subscriber registered via RendezvousRequest
// with reason, then clears the subscriber list (one-shot, like Property).
func (k *Kernel) Rendezvous(threadID objectID, reason KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return
	}
	k.notifySubsLocked(&t.rendezvousSub, reason)
}

// RendezvousRequest subscribes to target's next Rendezvous call.
func (k *Kernel) RendezvousRequest(target objectID, subscriber objectID, status *RequestStatus) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(target)
	if !ok {
		return false
	}
	t.rendezvousSub = append(t.rendezvousSub, subscription{subscriber: subscriber, status: status})
	return true
}

// ---- handles ---------------------------------------------------------------

func (k *Kernel) tableFor(threadID objectID, local bool) *handleTable {
	t, ok := k.threads.get(threadID)
	if !ok {
		return nil
	}
	if local {
		return t.handles
	}
	p, ok := k.processes.get(t.process)
	if !ok {
		return nil
	}
	return p.handles
}

// OpenHandle inserts a reference into threadID's table (thread-local if
// local is true, otherwise the owning process's shared table) and returns
// the resulting Handle.
func (k *Kernel) OpenHandle(threadID objectID, r ref, local bool) (Handle, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	tbl := k.tableFor(threadID, local)
	if tbl == nil {
		return 0, false
	}
	return tbl.insert(r), true
}

// ResolveHandle looks up what a handle refers to from threadID's point of
// view, trying the table the handle's top bit selects.
func (k *Kernel) ResolveHandle(threadID objectID, h Handle) (ref, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	tbl := k.tableFor(threadID, h.Local())
	if tbl == nil {
		return ref{}, false
	}
	return tbl.lookup(h)
}

// CloseHandle removes h from threadID's table and, if that released the
// last reference to the underlying object (and no internal subscriber
// reference remains), destroys the object.
func (k *Kernel) CloseHandle(threadID objectID, h Handle) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	tbl := k.tableFor(threadID, h.Local())
	if tbl == nil {
		return KErrBadHandle
	}
	r, ok := tbl.close(h)
	if !ok {
		return KErrBadHandle
	}
	if k.refCountLocked(r) == 0 {
		k.destroyLocked(r)
	}
	return KErrNone
}

// DuplicateHandle copies a handle into the same owning thread/process pair,
// yielding a second independent handle to the same object.
func (k *Kernel) DuplicateHandle(threadID objectID, h Handle, local bool) (Handle, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	srcTbl := k.tableFor(threadID, h.Local())
	if srcTbl == nil {
		return 0, KErrBadHandle
	}
	r, ok := srcTbl.lookup(h)
	if !ok {
		return 0, KErrBadHandle
	}
	dstTbl := k.tableFor(threadID, local)
	if dstTbl == nil {
		return 0, KErrBadHandle
	}
	return dstTbl.insert(r), KErrNone
}

// OpenByName resolves a globally-named object and returns a fresh handle to
// it in threadID's process table.
func (k *Kernel) OpenByName(threadID objectID, kind Kind, name string) (Handle, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, ok := k.names[name]
	if !ok || r.kind != kind {
		return 0, KErrNotFound
	}
	tbl := k.tableFor(threadID, false)
	if tbl == nil {
		return 0, KErrBadHandle
	}
	return tbl.insert(r), KErrNone
}

// refCountLocked counts every open handle across every process/thread table
// that still points at r, plus the threads still queued on it as
// mutex/semaphore waiters. (Properties are never destroyed by a handle
// close, so their subscribers need no count here.)
func (k *Kernel) refCountLocked(r ref) int {
	n := 0
	for _, p := range k.processes.items {
		n += p.handles.count(r)
	}
	for _, t := range k.threads.items {
		n += t.handles.count(r)
	}
	switch r.kind {
	case KindMutex:
		if m, ok := k.mutexes.get(r.id); ok {
			n += len(m.waiters)
		}
	case KindSemaphore:
		if s, ok := k.semaphores.get(r.id); ok {
			n += len(s.waiters)
		}
	}
	return n
}

func (k *Kernel) destroyLocked(r ref) {
	switch r.kind {
	case KindProcess:
		if p, ok := k.processes.get(r.id); ok && k.processDeadLocked(p) {
			k.processes.remove(r.id)
			k.forgetName(r)
		}
	case KindThread:
		if t, ok := k.threads.get(r.id); ok && t.exited {
			k.threads.remove(r.id)
			k.forgetName(r)
		}
	case KindChunk:
		k.chunks.remove(r.id)
		k.forgetName(r)
	case KindMutex:
		k.mutexes.remove(r.id)
		k.forgetName(r)
	case KindSemaphore:
		k.semaphores.remove(r.id)
		k.forgetName(r)
	case KindSession:
		k.sessions.remove(r.id)
	case KindTimer:
		k.timers.remove(r.id)
	case KindServer:
		k.servers.remove(r.id)
		k.forgetName(r)
	case KindProperty:
		// Properties live until Define re-initializes them; handles to
		// them are closed independently of the property's lifetime.
	}
}

// processDeadLocked reports whether every thread the process ever owned has
// terminated — the other half of "closing a Process's last handle does not
// destroy it until every Thread has terminated".
func (k *Kernel) processDeadLocked(p *Process) bool {
	for _, tid := range p.threads {
		if t, ok := k.threads.get(tid); ok && !t.exited {
			return false
		}
	}
	return true
}

func (k *Kernel) forgetName(r ref) {
	for name, v := range k.names {
		if v == r {
			delete(k.names, name)
			return
		}
	}
}

// ---- scheduler / request servicing -----------------------------------------

// Reschedule picks the highest real-priority Ready thread and makes it
// current, returning false if nothing is runnable.
func (k *Kernel) Reschedule() (objectID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.rescheduleLocked()
}

func (k *Kernel) rescheduleLocked() (objectID, bool) {
	if k.current != 0 {
		if t, ok := k.threads.get(k.current); ok && t.state == StateRun {
			t.state = StateReady
			k.sched.enqueue(k.current)
		}
	}
	id, ok := k.sched.pick(func(id objectID) int32 {
		t, ok := k.threads.get(id)
		if !ok {
			return -1 << 31
		}
		return t.realPriority
	})
	if !ok {
		k.current = 0
		return 0, false
	}
	k.sched.remove(id)
	t, _ := k.threads.get(id)
	t.state = StateRun
	k.current = id
	return id, true
}

// PrepareReschedule asks the CPU driver to return from its run loop at the
// next safe point so the scheduler can switch threads; TakeRescheduleRequest
// consumes the flag.
func (k *Kernel) PrepareReschedule() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rescheduleWanted = true
}

// TakeRescheduleRequest reports whether PrepareReschedule has been called
// since the last check, clearing the flag.
func (k *Kernel) TakeRescheduleRequest() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	wanted := k.rescheduleWanted
	k.rescheduleWanted = false
	return wanted
}

// BlockHLE parks threadID in wait_hle while a host-side HLE call it issued
// completes asynchronously.
func (k *Kernel) BlockHLE(threadID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok || t.exited {
		return false
	}
	t.state = StateWaitHLE
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}
	return true
}

// UnblockHLE moves a thread parked by BlockHLE back to Ready.
func (k *Kernel) UnblockHLE(threadID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok || t.state != StateWaitHLE {
		return false
	}
	t.state = StateReady
	k.sched.enqueue(threadID)
	return true
}

// EnterLeave/ExitLeave track the guest's leave (nonlocal exit) nesting for
// stack-unwind guards; both return the depth after the adjustment.
func (k *Kernel) EnterLeave(threadID objectID) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return 0
	}
	t.leaveDepth++
	return t.leaveDepth
}

func (k *Kernel) ExitLeave(threadID objectID) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return 0
	}
	if t.leaveDepth > 0 {
		t.leaveDepth--
	}
	return t.leaveDepth
}

// Yield is the voluntary form of "run -> ready: timeslice exhausted or
// voluntary yield".
func (k *Kernel) Yield(threadID objectID) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t, ok := k.threads.get(threadID); ok && t.state == StateRun {
		t.state = StateReady
		k.sched.enqueue(threadID)
		if k.current == threadID {
			k.current = 0
		}
	}
}

// PostCompletion enqueues a completion for ProcessingRequests to apply.
// Host-side async drivers (timer expiry, IO completion) call this; it is
// the only entry point they have into the kernel's state, preserving
// "mapping changes only happen at kernel-entry".
func (k *Kernel) PostCompletion(status *RequestStatus, code KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending = append(k.pending, completion{status: status, code: code})
}

// ProcessingRequests drains the completion queue posted by background
// drivers, applying each one under the global lock.
func (k *Kernel) ProcessingRequests() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := len(k.pending)
	for _, c := range k.pending {
		k.completeLocked(c.status, c.code)
	}
	k.pending = k.pending[:0]
	return n
}

// Complete finalizes an asynchronous request: writes the code, bumps the
// owner's request semaphore, and wakes the owner if it was parked waiting
// on exactly this status or parked in WaitForAnyRequest.
func (k *Kernel) Complete(status *RequestStatus, code KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.completeLocked(status, code)
}

func (k *Kernel) completeLocked(status *RequestStatus, code KErr) {
	if status == nil || !status.pending {
		return
	}
	status.complete(code)
	delete(k.timeouts, status)
	owner, ok := k.threads.get(status.owner)
	if !ok {
		return
	}
	owner.requestSemaphore++
	switch {
	case owner.state == StateWait && owner.sleepStatus == status:
		owner.sleepStatus = nil
		owner.state = StateReady
		k.sched.enqueue(status.owner)
	case owner.state == StateWait && owner.waitingAnyRequest:
		owner.waitingAnyRequest = false
		owner.requestSemaphore--
		owner.state = StateReady
		k.sched.enqueue(status.owner)
	}
}

// WaitForAnyRequest consumes one completed asynchronous request from
// threadID's request semaphore, parking the thread in Wait when none has
// completed yet. Returns true if the caller proceeds without blocking.
func (k *Kernel) WaitForAnyRequest(threadID objectID) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok || t.exited {
		return false
	}
	if t.requestSemaphore > 0 {
		t.requestSemaphore--
		return true
	}
	t.waitingAnyRequest = true
	t.state = StateWait
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}
	return false
}

// ShouldTerminate reports whether System.Loop should stop iterating.
func (k *Kernel) ShouldTerminate() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.terminate
}

// RequestExit asks the kernel's run loop to stop at the next safe point.
func (k *Kernel) RequestExit() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.terminate = true
}

// Sleep parks threadID in Wait until status completes: either through the
// Timing callback the caller armed for it (see SleepFor) or for any other
// reason.
func (k *Kernel) Sleep(threadID objectID, status *RequestStatus) {
	k.mu.Lock()
	defer k.mu.Unlock()
	t, ok := k.threads.get(threadID)
	if !ok {
		return
	}
	t.state = StateWait
	t.sleepStatus = status
	k.sched.remove(threadID)
	if k.current == threadID {
		k.current = 0
	}
}

// CancelSleep cancels a pending sleep/after, completing its status with
// KErrCancel and removing the armed timer event from the virtual clock's
// queue. Idempotent: a second cancel of the same status is a no-op.
func (k *Kernel) CancelSleep(status *RequestStatus) bool {
	k.mu.Lock()
	if status == nil || !status.pending {
		k.mu.Unlock()
		return false
	}
	evID, hasEvent := k.timeouts[status]
	driver := k.timerDriver
	k.completeLocked(status, KErrCancel)
	k.mu.Unlock()

	// Dequeue outside the kernel lock: the driver takes the clock's own
	// lock, and the clock fires events that re-enter the kernel.
	if hasEvent && driver != nil {
		driver.Cancel(evID)
	}
	return true
}

// ReadyThreadIDs returns a priority-sorted snapshot of the ready queue, for
// diagnostics and tests.
func (k *Kernel) ReadyThreadIDs() []objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := append([]objectID(nil), k.sched.ready...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := k.threads.get(out[i])
		tj, _ := k.threads.get(out[j])
		return ti.realPriority > tj.realPriority
	})
	return out
}
