package system

import (
	"spark/sparkos/kernel"
	"spark/sparkos/services/window"
)

// maxCommandBufferBytes caps how much a single CommandBuffer/SyncMsgBuf
// request can carry; real window-server payloads are a few hundred bytes
// at most.
const maxCommandBufferBytes = 4096

// Connect opens a Session to the window server on behalf of clientThread,
// mirroring the guest-side RWsSession::Connect call.
func (s *System) Connect(clientThread kernel.ObjectID) (kernel.ObjectID, kernel.KErr) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kernel.Connect(clientThread, "!Window")
}

// ServiceWindowMessage pops and handles one pending window-server request,
// if any, returning false when the queue is empty. A host entry point (or
// a dedicated guest thread once the CPU engine is wired in) calls this in
// a loop the same way any other server's dispatch thread would call
// NextMessage/WaitForMessage.
func (s *System) ServiceWindowMessage() bool {
	s.mu.Lock()
	msgID, ok := s.kernel.NextMessage(s.wservServer)
	s.mu.Unlock()
	if !ok {
		return false
	}

	msg, ok := s.kernel.Message(msgID)
	if !ok {
		return true
	}
	s.ipcLog.Infof("wserv: function %d from thread %d", msg.Function(), msg.Sender())

	switch window.Function(msg.Function()) {
	case window.FuncInit:
		s.handleWindowInit(msgID, msg)
	case window.FuncCommandBuffer, window.FuncSyncMsgBuf:
		s.handleWindowCommandBuffer(msgID, msg)
	default:
		s.kernel.SetRequestStatus(msgID, kernel.KErrNotSupported)
	}
	return true
}

func (s *System) handleWindowInit(msgID kernel.ObjectID, msg *kernel.Message) {
	s.mu.Lock()
	c := s.window.Init()
	s.wservClients[msg.Sender()] = c.ID()
	s.mu.Unlock()
	s.kernel.SetRequestStatus(msgID, kernel.KErr(c.ID()))
}

func (s *System) handleWindowCommandBuffer(msgID kernel.ObjectID, msg *kernel.Message) {
	s.mu.Lock()
	clientID, ok := s.wservClients[msg.Sender()]
	s.mu.Unlock()
	if !ok {
		s.kernel.SetRequestStatus(msgID, kernel.KErrNotFound)
		return
	}

	buf, kerr := s.kernel.ReadArgBytes(msg, 0, maxCommandBufferBytes)
	if kerr != kernel.KErrNone {
		s.kernel.SetRequestStatus(msgID, kerr)
		return
	}

	s.mu.Lock()
	_, err := s.window.CommandBuffer(clientID, buf)
	s.mu.Unlock()
	if err != nil {
		s.kernel.SetRequestStatus(msgID, kernel.KErrArgument)
		return
	}
	s.kernel.SetRequestStatus(msgID, kernel.KErrNone)
}
