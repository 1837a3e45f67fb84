package window

import (
	"encoding/binary"
	"testing"

	"spark/logging"
)

func buildCommand(op Op, objHandle uint32, payload []byte) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(op))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(payload)))
	if op.targeted() {
		h := make([]byte, 4)
		binary.LittleEndian.PutUint32(h, objHandle)
		buf = append(buf, h...)
	}
	buf = append(buf, payload...)
	return buf
}

func int32le(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func TestCreateScreenDeviceThenWindowGroup(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	screenCmd := buildCommand(OpCreateScreenDevice, 0, append(int32le(0), int32le(0)...))

	replies, err := c.Dispatch(screenCmd)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	screenHandle := replies[0].Handle
	if screenHandle != baseHandle+2 {
		t.Fatalf("screen device handle = %#x, want %#x", screenHandle, baseHandle+2)
	}

	groupPayload := append(append(append(
		int32le(1),             // client_handle
		int32le(1)...),         // focus
		int32le(0)...),         // parent_id (not found -> root)
		int32le(int32(screenHandle))...) // screen_device_handle

	groupCmd := buildCommand(OpCreateWindowGroup|opObjectFlag, screenHandle, groupPayload)

	replies, err = c.Dispatch(groupCmd)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
	groupHandle := replies[0].Handle
	if groupHandle != baseHandle+3 {
		t.Fatalf("window group handle = %#x, want %#x", groupHandle, baseHandle+3)
	}

	group, ok := c.windowGroupAt(groupHandle)
	if !ok {
		t.Fatalf("window group %#x not found", groupHandle)
	}
	if group.parent != c.rootHandle {
		t.Fatalf("group.parent = %#x, want root %#x", group.parent, c.rootHandle)
	}
}

func TestTwoCommandsInOneStream(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	screenCmd := buildCommand(OpCreateScreenDevice, 0, append(int32le(0), int32le(0)...))
	groupPayload := append(append(append(
		int32le(1), int32le(1)...), int32le(0)...), int32le(int32(baseHandle+2))...)
	groupCmd := buildCommand(OpCreateWindowGroup|opObjectFlag, baseHandle+2, groupPayload)

	stream := append(screenCmd, groupCmd...)

	replies, err := c.Dispatch(stream)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if replies[0].Handle != baseHandle+2 {
		t.Fatalf("screen device handle = %#x, want %#x", replies[0].Handle, baseHandle+2)
	}
	if replies[1].Handle != baseHandle+3 {
		t.Fatalf("window group handle = %#x, want %#x", replies[1].Handle, baseHandle+3)
	}
}

func TestPixelSizeAndTwipsSize(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	replies, err := c.Dispatch(buildCommand(OpCreateScreenDevice, 0, append(int32le(0), int32le(0)...)))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	screenHandle := replies[0].Handle

	replies, err = c.Dispatch(buildCommand(OpPixelSize|opObjectFlag, screenHandle, nil))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	w := int32(binary.LittleEndian.Uint32(replies[0].Data[0:4]))
	h := int32(binary.LittleEndian.Uint32(replies[0].Data[4:8]))
	if w != 640 || h != 480 {
		t.Fatalf("PixelSize = (%d,%d), want (640,480)", w, h)
	}

	replies, err = c.Dispatch(buildCommand(OpTwipsSize|opObjectFlag, screenHandle, nil))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	tw := int32(binary.LittleEndian.Uint32(replies[0].Data[0:4]))
	th := int32(binary.LittleEndian.Uint32(replies[0].Data[4:8]))
	if tw != 640*15 || th != 480*15 {
		t.Fatalf("TwipsSize = (%d,%d), want (%d,%d)", tw, th, 640*15, 480*15)
	}
}

func TestGcActivateBindsScreenDeviceFromWindow(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	replies, _ := c.Dispatch(buildCommand(OpCreateScreenDevice, 0, append(int32le(0), int32le(0)...)))
	screenHandle := replies[0].Handle

	groupPayload := append(append(append(
		int32le(1), int32le(0)...), int32le(0)...), int32le(int32(screenHandle))...)
	replies, _ = c.Dispatch(buildCommand(OpCreateWindowGroup|opObjectFlag, screenHandle, groupPayload))
	groupHandle := replies[0].Handle

	replies, err := c.Dispatch(buildCommand(OpCreateGc, 0, nil))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	gcHandle := replies[0].Handle

	replies, err = c.Dispatch(buildCommand(OpActivate|opObjectFlag, gcHandle, int32le(int32(groupHandle))))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	bound := binary.LittleEndian.Uint32(replies[0].Data)
	if bound != screenHandle {
		t.Fatalf("Activate bound screen device %#x, want %#x", bound, screenHandle)
	}
}

func TestUnhandledRedrawReadyCompletesSuccess(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	cmd := buildCommand(OpRedrawReady|opAsyncFlag, 0, nil)
	replies, err := c.Dispatch(cmd)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(replies) != 1 || !replies[0].Completed || replies[0].Code != 0 {
		t.Fatalf("RedrawReady reply = %+v, want Completed=true Code=0", replies)
	}
}

func TestUnhandledOtherAsyncOpIsDropped(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	cmd := buildCommand(Op(0x3fff)|opAsyncFlag, 0, nil)
	replies, err := c.Dispatch(cmd)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(replies) != 0 {
		t.Fatalf("got %d replies, want 0 (dropped)", len(replies))
	}
}

func TestCreateSpriteFallsBackToRootWindow(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	replies, err := c.Dispatch(buildCommand(OpCreateSprite, 0, int32le(0)))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	spriteHandle := replies[0].Handle
	sprite, ok := c.objectAt(spriteHandle)
	if !ok {
		t.Fatalf("sprite %#x not found", spriteHandle)
	}
	if sprite.(*Sprite).window != c.rootHandle {
		t.Fatalf("sprite.window = %#x, want root %#x", sprite.(*Sprite).window, c.rootHandle)
	}
}

func TestGetFocusWindowGroup(t *testing.T) {
	s := New(logging.Discard{})
	c := s.Init()

	replies, _ := c.Dispatch(buildCommand(OpCreateScreenDevice, 0, append(int32le(0), int32le(0)...)))
	screenHandle := replies[0].Handle

	groupPayload := append(append(append(
		int32le(1), int32le(1)...), int32le(0)...), int32le(int32(screenHandle))...)
	replies, _ = c.Dispatch(buildCommand(OpCreateWindowGroup|opObjectFlag, screenHandle, groupPayload))
	groupHandle := replies[0].Handle

	replies, err := c.Dispatch(buildCommand(OpGetFocusWindowGroup, 0, nil))
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	got := binary.LittleEndian.Uint32(replies[0].Data)
	if got != groupHandle {
		t.Fatalf("GetFocusWindowGroup = %#x, want %#x", got, groupHandle)
	}
}
