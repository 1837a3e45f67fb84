package window

import "spark/logging"

// baseHandle is the reference point handles are minted from: the first
// object in any Client's objects list is handed baseHandle+1 = 0x40000001.
// Handle validity is baseHandle < h <= baseHandle+len(objects); handles are
// never reused even after a hypothetical close, since nothing in this
// service ever removes an entry from objects.
const baseHandle = 0x40000000

// Client is the per-session state the window server keeps for one
// connected guest session: its object table and the root of its window
// tree, which is itself object index 0.
type Client struct {
	id                  uint32
	log                 logging.Logger
	objects             []wsObject
	rootHandle          uint32
	primaryScreenDevice uint32
	focusGroup          uint32
	eventReady          bool
}

// newClient allocates a Client and its implicit root window group, which
// always occupies the first object slot.
func newClient(id uint32, log logging.Logger) *Client {
	c := &Client{id: id, log: log}
	root := &WindowGroup{}
	c.rootHandle = c.addObject(root)
	root.handle = c.rootHandle
	return c
}

// ID is the Client's session identifier, echoed back by Init.
func (c *Client) ID() uint32 { return c.id }

// ObjectCount reports how many objects the Client has allocated, the
// implicit root window group included.
func (c *Client) ObjectCount() int { return len(c.objects) }

func (c *Client) addObject(o wsObject) uint32 {
	c.objects = append(c.objects, o)
	return baseHandle + uint32(len(c.objects))
}

func (c *Client) validHandle(h uint32) bool {
	return h > baseHandle && h <= baseHandle+uint32(len(c.objects))
}

func (c *Client) objectAt(h uint32) (wsObject, bool) {
	if !c.validHandle(h) {
		return nil, false
	}
	return c.objects[h-baseHandle-1], true
}

func (c *Client) windowGroupAt(h uint32) (*WindowGroup, bool) {
	obj, ok := c.objectAt(h)
	if !ok {
		return nil, false
	}
	g, ok := obj.(*WindowGroup)
	return g, ok
}

func (c *Client) screenDeviceAt(h uint32) (*ScreenDevice, bool) {
	obj, ok := c.objectAt(h)
	if !ok {
		return nil, false
	}
	d, ok := obj.(*ScreenDevice)
	return d, ok
}

func (c *Client) rootGroup() *WindowGroup {
	g, _ := c.windowGroupAt(c.rootHandle)
	return g
}

// findWindowGroup does a recursive handle-indexed search of the Client's
// window tree, starting at the root.
func (c *Client) findWindowGroup(handle uint32) (*WindowGroup, bool) {
	return c.searchWindowGroup(c.rootGroup(), handle)
}

func (c *Client) searchWindowGroup(g *WindowGroup, handle uint32) (*WindowGroup, bool) {
	if g == nil {
		return nil, false
	}
	if g.handle == handle {
		return g, true
	}
	for _, childHandle := range g.children {
		child, ok := c.windowGroupAt(childHandle)
		if !ok {
			continue
		}
		if found, ok := c.searchWindowGroup(child, handle); ok {
			return found, true
		}
	}
	return nil, false
}

// Dispatch parses buf as a CommandBuffer/SyncMsgBuf wire stream and
// executes each command against the Client or its target object in order,
// returning one Reply per command that produced output.
func (c *Client) Dispatch(buf []byte) ([]Reply, error) {
	cmds, err := parseCommands(buf)
	if err != nil {
		return nil, err
	}
	replies := make([]Reply, 0, len(cmds))
	for _, cmd := range cmds {
		if r, ok := c.dispatchOne(cmd); ok {
			replies = append(replies, r)
		}
	}
	return replies, nil
}

func (c *Client) dispatchOne(cmd command) (Reply, bool) {
	if r, ok := c.dispatchClientOp(cmd.op, cmd.payload); ok {
		return r, true
	}
	if cmd.objHandle != 0 {
		if obj, ok := c.objectAt(cmd.objHandle); ok {
			if r, ok := obj.execute(c, cmd.op, cmd.payload); ok {
				return r, true
			}
		}
	}
	return c.unhandled(cmd.op)
}

// unhandled implements on_unhandled_opcode's generalized shortcut: any
// asynchronous op whose low bits equal RedrawReady completes with success;
// every other unhandled op is silently dropped.
func (c *Client) unhandled(op Op) (Reply, bool) {
	if !op.Async() {
		return Reply{}, false
	}
	if op.code() == OpRedrawReady {
		return Reply{Completed: true, Code: 0}, true
	}
	return Reply{}, false
}

func (c *Client) dispatchClientOp(op Op, payload []byte) (Reply, bool) {
	switch op.code() {
	case OpCreateScreenDevice:
		return c.createScreenDevice(payload), true
	case OpCreateWindowGroup:
		return c.createWindowGroup(payload), true
	case OpCreateGc:
		return c.createGc(), true
	case OpCreateSprite:
		return c.createSprite(payload), true
	case OpRestoreDefaultHotKey:
		return Reply{}, true
	case OpEventReady:
		c.eventReady = true
		return Reply{}, true
	case OpGetFocusWindowGroup:
		return Reply{Data: encodeUint32(c.focusGroup)}, true
	default:
		return Reply{}, false
	}
}

func (c *Client) createScreenDevice(payload []byte) Reply {
	d := &ScreenDevice{
		displayNum:  decodeInt32(payload, 0),
		pixelWidth:  640,
		pixelHeight: 480,
	}
	h := c.addObject(d)
	d.handle = h
	if c.primaryScreenDevice == 0 {
		c.primaryScreenDevice = h
	}
	return Reply{Handle: h}
}

func (c *Client) createWindowGroup(payload []byte) Reply {
	focus := decodeInt32(payload, 4) != 0
	parentID := uint32(decodeInt32(payload, 8))
	screenHandle := uint32(decodeInt32(payload, 12))

	parent, ok := c.findWindowGroup(parentID)
	if !ok {
		c.warnf("window: CreateWindowGroup parent %#x not found, using root", parentID)
		parent = c.rootGroup()
	}

	if int32(screenHandle) <= 0 {
		screenHandle = c.primaryScreenDevice
	}

	g := &WindowGroup{parent: parent.handle, screenDevice: screenHandle, focus: focus}
	h := c.addObject(g)
	g.handle = h
	parent.children = append(parent.children, h)
	if focus {
		c.focusGroup = h
	}
	return Reply{Handle: h}
}

func (c *Client) createGc() Reply {
	g := &Gc{}
	h := c.addObject(g)
	g.handle = h
	return Reply{Handle: h}
}

func (c *Client) createSprite(payload []byte) Reply {
	windowHandle := uint32(decodeInt32(payload, 0))
	if int32(windowHandle) <= 0 {
		c.warnf("window: CreateSprite window handle <= 0, using root")
		windowHandle = c.rootHandle
	}
	s := &Sprite{window: windowHandle}
	h := c.addObject(s)
	s.handle = h
	return Reply{Handle: h}
}
