package system

import (
	"encoding/binary"
	"testing"

	"spark/memory"
	"spark/sparkos/kernel"
	"spark/sparkos/services/window"
)

func TestWindowServerOverIPC(t *testing.T) {
	s := New(nil)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer s.Shutdown()
	k := s.Kernel()

	clientProc := k.CreateProcess("wsclient", 0, kernel.UID{}, "")
	clientThread, ok := k.CreateThread(clientProc, "wsclient:main", 0, 0)
	if !ok {
		t.Fatalf("CreateThread failed")
	}
	k.Resume(clientThread)

	sess, kerr := s.Connect(clientThread)
	if kerr != kernel.KErrNone {
		t.Fatalf("Connect = %v", kerr)
	}

	initStatus := kernel.NewRequestStatus(clientThread, 0, nil)
	if _, kerr := k.Send(sess, int32(window.FuncInit), [4]kernel.Arg{}, nil, initStatus); kerr != kernel.KErrNone {
		t.Fatalf("Send(FuncInit) = %v", kerr)
	}
	if !s.ServiceWindowMessage() {
		t.Fatalf("ServiceWindowMessage found no queued init message")
	}
	clientID := uint32(initStatus.Code())
	if clientID == 0 {
		t.Fatalf("Init completed with zero client id")
	}

	// Stage a CreateScreenDevice command stream in guest memory.
	space := memory.New(0)
	chunk, err := space.NewChunk("wsclient:cmd", 4096)
	if err != nil {
		t.Fatalf("NewChunk: %v", err)
	}
	if _, err := chunk.Commit(4096); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	cmd := make([]byte, 12)
	binary.LittleEndian.PutUint16(cmd[0:2], uint16(window.OpCreateScreenDevice))
	binary.LittleEndian.PutUint16(cmd[2:4], 8)
	if _, err := space.WriteBytes(chunk.Base(), cmd); err != nil {
		t.Fatalf("WriteBytes: %v", err)
	}

	cmdStatus := kernel.NewRequestStatus(clientThread, 0, nil)
	args := [4]kernel.Arg{kernel.PtrArg(chunk.Base(), uint32(len(cmd)))}
	if _, kerr := k.Send(sess, int32(window.FuncCommandBuffer), args, space, cmdStatus); kerr != kernel.KErrNone {
		t.Fatalf("Send(FuncCommandBuffer) = %v", kerr)
	}
	if !s.ServiceWindowMessage() {
		t.Fatalf("ServiceWindowMessage found no queued command message")
	}
	if cmdStatus.Pending() || cmdStatus.Code() != kernel.KErrNone {
		t.Fatalf("command status = pending=%v code=%v; want completed KErrNone", cmdStatus.Pending(), cmdStatus.Code())
	}

	c, found := s.Window().Client(clientID)
	if !found {
		t.Fatalf("no window client with id %d", clientID)
	}
	if c.ObjectCount() != 2 {
		t.Fatalf("ObjectCount = %d; want 2 (root group + screen device)", c.ObjectCount())
	}
}

func TestServiceWindowMessageEmptyQueue(t *testing.T) {
	s := New(nil)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	defer s.Shutdown()
	if s.ServiceWindowMessage() {
		t.Fatalf("ServiceWindowMessage on an empty queue should report false")
	}
}
