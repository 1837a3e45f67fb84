// Package window implements the window server: the exemplary IPC service
// that demonstrates the command-buffer dispatch pattern every guest server
// built on sparkos/kernel's Session/Server primitives uses. It is kept free
// of any sparkos/kernel import — a Server here is driven by whatever thin
// adapter wires it to a real kernel Session, matching the "pass an explicit
// context, no globals" rule the rest of this design follows.
package window

import (
	"encoding/binary"
	"fmt"
)

// Function identifies the IPC request sent to a window-server Session.
type Function uint16

const (
	FuncInit Function = iota + 1
	FuncCommandBuffer
	FuncSyncMsgBuf
)

// Op is a command opcode carried inside a CommandBuffer/SyncMsgBuf byte
// stream. The top two bits are flags; the low 14 bits select the command.
type Op uint16

const (
	opAsyncFlag  Op = 0x4000
	opObjectFlag Op = 0x8000
	opMask       Op = 0x3fff
)

// Client-level opcodes: dispatched against the Client itself.
const (
	OpCreateScreenDevice Op = iota + 1
	OpCreateWindowGroup
	OpCreateGc
	OpCreateSprite
	OpRestoreDefaultHotKey
	OpEventReady
	OpGetFocusWindowGroup
	OpRedrawReady
)

// Object-level opcodes: dispatched against the command's target object.
const (
	OpPixelSize Op = iota + 0x100
	OpTwipsSize
	OpActivate
)

// Async reports whether op carries the asynchronous-completion flag.
func (op Op) Async() bool { return op&opAsyncFlag != 0 }

func (op Op) targeted() bool { return op&opObjectFlag != 0 }

func (op Op) code() Op { return op & opMask }

// command is one parsed entry from a CommandBuffer/SyncMsgBuf byte stream.
type command struct {
	op        Op
	objHandle uint32
	payload   []byte
}

// parseCommands splits a wire-format byte stream into its component
// commands: header(op:u16, cmd_len:u16) [obj_handle:u32 if op.bit15]
// payload[cmd_len], repeated until the buffer is exhausted.
func parseCommands(buf []byte) ([]command, error) {
	var out []command
	for len(buf) > 0 {
		if len(buf) < 4 {
			return nil, fmt.Errorf("window: truncated command header (%d bytes left)", len(buf))
		}
		op := Op(binary.LittleEndian.Uint16(buf[0:2]))
		cmdLen := binary.LittleEndian.Uint16(buf[2:4])
		buf = buf[4:]

		var handle uint32
		if op.targeted() {
			if len(buf) < 4 {
				return nil, fmt.Errorf("window: truncated object handle for op %#x", uint16(op))
			}
			handle = binary.LittleEndian.Uint32(buf[0:4])
			buf = buf[4:]
		}

		if len(buf) < int(cmdLen) {
			return nil, fmt.Errorf("window: truncated payload for op %#x (want %d, have %d)", uint16(op), cmdLen, len(buf))
		}
		out = append(out, command{op: op, objHandle: handle, payload: buf[:cmdLen]})
		buf = buf[cmdLen:]
	}
	return out, nil
}

// Reply is what executing one command produces: a newly allocated handle
// (creation ops), a raw little-endian reply payload (query ops), or an
// asynchronous completion code (the RedrawReady success shortcut).
type Reply struct {
	Handle    uint32
	Data      []byte
	Completed bool
	Code      int32
}

func encodeInt32Pair(a, b int32) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(a))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(b))
	return buf
}

func encodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func decodeInt32(b []byte, off int) int32 {
	if off+4 > len(b) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b[off : off+4]))
}
