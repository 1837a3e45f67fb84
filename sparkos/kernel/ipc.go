package kernel

// ArgKind tags one of a Message's four fixed argument slots.
type ArgKind uint8

const (
	ArgNone ArgKind = iota
	ArgInt          // an immediate 32-bit integer
	ArgPtr          // a pointer into the sender's guest address space
	ArgOut          // an output buffer descriptor (pointer + capacity)
)

// Arg is one of a Message's four indirect argument slots.
type Arg struct {
	Kind    ArgKind
	IntVal  int32
	Addr    uint32
	Len     uint32 // capacity, for ArgPtr/ArgOut
	Written uint32 // bytes actually written back, set by WriteArgPkg on ArgOut
}

// IntArg builds an immediate-integer Arg.
func IntArg(v int32) Arg { return Arg{Kind: ArgInt, IntVal: v} }

// PtrArg builds a pointer Arg referencing n bytes at addr in the sender's
// address space.
func PtrArg(addr uint32, n uint32) Arg { return Arg{Kind: ArgPtr, Addr: addr, Len: n} }

// OutArg builds an output-buffer Arg of capacity n at addr.
func OutArg(addr uint32, n uint32) Arg { return Arg{Kind: ArgOut, Addr: addr, Len: n} }

// Message carries one IPC request from a client Session to its Server.
type Message struct {
	object

	function int32
	args     [4]Arg
	sender   objectID
	server   objectID
	reply    *RequestStatus
	mem      GuestMemory
}

func (m *Message) Function() int32 { return m.function }
func (m *Message) Sender() objectID { return m.sender }

// Server is a named kernel object bound to a host-side Thread that
// dispatches the messages sent to it, in send order.
type Server struct {
	object

	thread objectID
	queue  []objectID

	waiter       objectID
	waiterStatus *RequestStatus
}

// Session is a client-side handle to a Server.
type Session struct {
	object

	server objectID
	client objectID
}

// CreateServer registers a named Server bound to serverThread.
func (k *Kernel) CreateServer(name string, serverThread objectID) objectID {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := &Server{object: object{kind: KindServer, name: name, owner: OwnerThread}, thread: serverThread}
	id := k.servers.add(s)
	s.id = id
	if name != "" {
		k.names[name] = ref{kind: KindServer, id: id}
	}
	return id
}

// Connect creates a Session binding clientThread to the named Server.
func (k *Kernel) Connect(clientThread objectID, serverName string) (objectID, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	r, ok := k.names[serverName]
	if !ok || r.kind != KindServer {
		return 0, KErrNotFound
	}
	sess := &Session{object: object{kind: KindSession, owner: OwnerThread}, server: r.id, client: clientThread}
	id := k.sessions.add(sess)
	sess.id = id
	return id, KErrNone
}

// Send allocates a Message on behalf of sessionID's client, enqueues it on
// the bound Server in send order, and leaves status Pending: only the
// server's SetRequestStatus call (or a Cancel) resolves it.
func (k *Kernel) Send(sessionID objectID, function int32, args [4]Arg, mem GuestMemory, status *RequestStatus) (objectID, KErr) {
	k.mu.Lock()
	defer k.mu.Unlock()
	sess, ok := k.sessions.get(sessionID)
	if !ok {
		return 0, KErrBadHandle
	}
	srv, ok := k.servers.get(sess.server)
	if !ok {
		return 0, KErrNotFound
	}

	msg := &Message{
		object:   object{kind: KindMessage, owner: OwnerThread},
		function: function,
		args:     args,
		sender:   sess.client,
		server:   sess.server,
		reply:    status,
		mem:      mem,
	}
	id := k.messages.add(msg)
	msg.id = id
	srv.queue = append(srv.queue, id)

	if srv.waiter != 0 {
		k.completeLocked(srv.waiterStatus, KErrNone)
		srv.waiter = 0
		srv.waiterStatus = nil
	}
	return id, KErrNone
}

// NextMessage pops the oldest queued message for serverID, if any, without
// blocking.
func (k *Kernel) NextMessage(serverID objectID) (objectID, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	srv, ok := k.servers.get(serverID)
	if !ok || len(srv.queue) == 0 {
		return 0, false
	}
	id := srv.queue[0]
	srv.queue = srv.queue[1:]
	return id, true
}

// WaitForMessage parks serverThread until NextMessage would succeed: it
// reuses the Sleep/Complete plumbing so a Send() to an empty server wakes
// the waiting server thread through the same path a timer expiry would.
func (k *Kernel) WaitForMessage(serverThread, serverID objectID, status *RequestStatus) {
	k.mu.Lock()
	srv, ok := k.servers.get(serverID)
	if ok && len(srv.queue) > 0 {
		k.completeLocked(status, KErrNone)
		k.mu.Unlock()
		return
	}
	if ok {
		srv.waiter = serverThread
		srv.waiterStatus = status
	}
	k.mu.Unlock()
	k.Sleep(serverThread, status)
}

// SetRequestStatus completes a message's reply status with code and
// recycles the message (removes it from the arena). Completing an
// already-completed status is a no-op, preserving "completes at most once".
func (k *Kernel) SetRequestStatus(messageID objectID, code KErr) KErr {
	k.mu.Lock()
	defer k.mu.Unlock()
	msg, ok := k.messages.get(messageID)
	if !ok {
		return KErrBadHandle
	}
	k.completeLocked(msg.reply, code)
	k.messages.remove(messageID)
	return KErrNone
}

// Message looks up a live message by id, e.g. for argument decoding by a
// server's dispatch loop.
func (k *Kernel) Message(id objectID) (*Message, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.messages.get(id)
}

// ReadArgInt32 reads argument slot i as a 32-bit integer, following an
// ArgPtr indirection through the sender's guest memory if necessary.
func (k *Kernel) ReadArgInt32(msg *Message, slot int) (int32, KErr) {
	if slot < 0 || slot > 3 {
		return 0, KErrArgument
	}
	a := msg.args[slot]
	switch a.Kind {
	case ArgInt:
		return a.IntVal, KErrNone
	case ArgPtr:
		if msg.mem == nil {
			return 0, KErrArgument
		}
		v, err := msg.mem.ReadInt32(a.Addr)
		if err != nil {
			return 0, KErrGeneral
		}
		return v, KErrNone
	default:
		return 0, KErrArgument
	}
}

// ReadArgBytes reads up to n bytes referenced by an ArgPtr/ArgOut slot.
func (k *Kernel) ReadArgBytes(msg *Message, slot int, n int) ([]byte, KErr) {
	if slot < 0 || slot > 3 {
		return nil, KErrArgument
	}
	a := msg.args[slot]
	if a.Kind != ArgPtr && a.Kind != ArgOut {
		return nil, KErrArgument
	}
	if msg.mem == nil {
		return nil, KErrArgument
	}
	if uint32(n) > a.Len {
		n = int(a.Len)
	}
	b, err := msg.mem.ReadBytes(a.Addr, n)
	if err != nil {
		return nil, KErrGeneral
	}
	return b, KErrNone
}

// WriteArgPkg writes value back into an ArgOut slot, capped at the slot's
// declared capacity, and records how many bytes were actually written.
func (k *Kernel) WriteArgPkg(msg *Message, slot int, value []byte) KErr {
	if slot < 0 || slot > 3 {
		return KErrArgument
	}
	a := &msg.args[slot]
	if a.Kind != ArgOut {
		return KErrArgument
	}
	if msg.mem == nil {
		return KErrArgument
	}
	n := len(value)
	if uint32(n) > a.Len {
		n = int(a.Len)
	}
	written, err := msg.mem.WriteBytes(a.Addr, value[:n])
	if err != nil {
		return KErrGeneral
	}
	a.Written = uint32(written)
	return KErrNone
}
