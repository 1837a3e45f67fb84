package kernel

import "testing"

func TestSendDeliversInSendOrder(t *testing.T) {
	k := New(nil)
	serverProc := k.CreateProcess("server", 0, UID{}, "")
	serverThread, _ := k.CreateThread(serverProc, "", 0, 0)
	clientProc := k.CreateProcess("client", 0, UID{}, "")
	clientThread, _ := k.CreateThread(clientProc, "", 0, 0)

	srv := k.CreateServer("window.server", serverThread)
	sess, err := k.Connect(clientThread, "window.server")
	if err != KErrNone {
		t.Fatalf("Connect = %v", err)
	}

	var statuses []*RequestStatus
	for i := int32(0); i < 3; i++ {
		st := NewRequestStatus(clientThread, 0, nil)
		statuses = append(statuses, st)
		if _, err := k.Send(sess, i, [4]Arg{IntArg(i)}, nil, st); err != KErrNone {
			t.Fatalf("Send(%d) = %v", i, err)
		}
	}

	for i := int32(0); i < 3; i++ {
		id, ok := k.NextMessage(srv)
		if !ok {
			t.Fatalf("NextMessage() ok=false at i=%d", i)
		}
		msg, _ := k.Message(id)
		if msg.Function() != i {
			t.Fatalf("message %d function = %d; want %d (send order)", i, msg.Function(), i)
		}
		if err := k.SetRequestStatus(id, KErr(i)); err != KErrNone {
			t.Fatalf("SetRequestStatus = %v", err)
		}
		if statuses[i].Code() != KErr(i) {
			t.Fatalf("status[%d].Code() = %v; want %d", i, statuses[i].Code(), i)
		}
	}

	if _, ok := k.NextMessage(srv); ok {
		t.Fatalf("NextMessage() after draining queue should return ok=false")
	}
}

func TestWaitForMessageWakesOnSend(t *testing.T) {
	k := New(nil)
	serverProc := k.CreateProcess("server", 0, UID{}, "")
	serverThread, _ := k.CreateThread(serverProc, "", 0, 0)
	k.Resume(serverThread)
	clientProc := k.CreateProcess("client", 0, UID{}, "")
	clientThread, _ := k.CreateThread(clientProc, "", 0, 0)

	srv := k.CreateServer("s", serverThread)
	sess, _ := k.Connect(clientThread, "s")

	waitStatus := NewRequestStatus(serverThread, 0, nil)
	k.WaitForMessage(serverThread, srv, waitStatus)
	if !waitStatus.Pending() {
		t.Fatalf("waitStatus should be pending with no messages queued")
	}

	replyStatus := NewRequestStatus(clientThread, 0, nil)
	if _, err := k.Send(sess, 1, [4]Arg{}, nil, replyStatus); err != KErrNone {
		t.Fatalf("Send = %v", err)
	}
	if waitStatus.Pending() {
		t.Fatalf("waitStatus should complete once a message is sent")
	}
}
