package window

// ObjKind is the closed set of client-side object kinds the window server
// manages, replacing the source's open KernelObject/window_client_obj
// hierarchy with a tagged enum plus a dispatch method per kind.
type ObjKind int

const (
	KindWindowGroup ObjKind = iota
	KindScreenDevice
	KindGc
	KindSprite
)

func (k ObjKind) String() string {
	switch k {
	case KindWindowGroup:
		return "window_group"
	case KindScreenDevice:
		return "screen_device"
	case KindGc:
		return "gc"
	case KindSprite:
		return "sprite"
	default:
		return "unknown"
	}
}

// wsObject is any client-side object addressable by handle, dispatched to
// by an object-targeted command.
type wsObject interface {
	kind() ObjKind
	execute(c *Client, op Op, payload []byte) (Reply, bool)
}

// ScreenDevice models one physical or virtual display surface a Client can
// create windows against.
type ScreenDevice struct {
	handle       uint32
	displayNum   int32
	pixelWidth   int32
	pixelHeight  int32
}

func (d *ScreenDevice) kind() ObjKind { return KindScreenDevice }

func (d *ScreenDevice) execute(c *Client, op Op, payload []byte) (Reply, bool) {
	switch op.code() {
	case OpPixelSize:
		return Reply{Data: encodeInt32Pair(d.pixelWidth, d.pixelHeight)}, true
	case OpTwipsSize:
		return Reply{Data: encodeInt32Pair(d.pixelWidth*15, d.pixelHeight*15)}, true
	default:
		return Reply{}, false
	}
}

// WindowGroup is one node in the Client's window tree. The root window
// group is created implicitly for every Client and is never reachable by
// any handle but its own.
type WindowGroup struct {
	handle       uint32
	parent       uint32
	screenDevice uint32
	focus        bool
	children     []uint32
}

func (g *WindowGroup) kind() ObjKind { return KindWindowGroup }

func (g *WindowGroup) execute(c *Client, op Op, payload []byte) (Reply, bool) {
	return Reply{}, false
}

// Gc is a graphics context. It has no screen device until Activate binds
// it to a window, at which point it inherits that window's device.
type Gc struct {
	handle       uint32
	screenDevice uint32
}

func (g *Gc) kind() ObjKind { return KindGc }

func (g *Gc) execute(c *Client, op Op, payload []byte) (Reply, bool) {
	switch op.code() {
	case OpActivate:
		windowHandle := uint32(decodeInt32(payload, 0))
		target, ok := c.resolveWindowGroup(windowHandle)
		if !ok {
			return Reply{}, false
		}
		g.screenDevice = target.screenDevice
		return Reply{Data: encodeUint32(g.screenDevice)}, true
	default:
		return Reply{}, false
	}
}

// Sprite is a small bitmap positioned relative to a window.
type Sprite struct {
	handle uint32
	window uint32
}

func (s *Sprite) kind() ObjKind { return KindSprite }

func (s *Sprite) execute(c *Client, op Op, payload []byte) (Reply, bool) {
	return Reply{}, false
}

func (c *Client) resolveWindowGroup(handle uint32) (*WindowGroup, bool) {
	if handle == 0 {
		return c.rootGroup(), true
	}
	g, ok := c.windowGroupAt(handle)
	if !ok {
		c.warnf("window: handle %#x is not a window group, using root", handle)
		return c.rootGroup(), true
	}
	return g, true
}

func (c *Client) warnf(format string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.Warnf(format, args...)
}
