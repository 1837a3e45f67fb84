package kernel

// Kind tags the family a kernel object belongs to. The set is closed: every
// object the Kernel can create is one of these, dispatched on directly
// rather than through an open class hierarchy.
type Kind uint8

const (
	KindProcess Kind = iota + 1
	KindThread
	KindChunk
	KindMutex
	KindSemaphore
	KindProperty
	KindSession
	KindServer
	KindTimer
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindProcess:
		return "process"
	case KindThread:
		return "thread"
	case KindChunk:
		return "chunk"
	case KindMutex:
		return "mutex"
	case KindSemaphore:
		return "semaphore"
	case KindProperty:
		return "property"
	case KindSession:
		return "session"
	case KindServer:
		return "server"
	case KindTimer:
		return "timer"
	case KindMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Access controls whether a named object is visible to other processes.
type Access uint8

const (
	AccessLocal Access = iota
	AccessGlobal
)

// OwnerKind identifies what kind of entity owns a KernelObject's name.
type OwnerKind uint8

const (
	OwnerProcess OwnerKind = iota
	OwnerThread
	OwnerKernel
)

// object is the common header embedded in every KernelObject variant.
type object struct {
	kind   Kind
	id     objectID
	name   string
	owner  OwnerKind
	access Access
}

func (o *object) Kind() Kind      { return o.kind }
func (o *object) Name() string    { return o.name }
func (o *object) Access() Access  { return o.access }

// ref is a kind-tagged pointer used wherever a handle table, wait queue, or
// subscriber list must refer to "any kernel object" without an open
// interface hierarchy.
type ref struct {
	kind Kind
	id   objectID
}

func (r ref) valid() bool { return r.kind != 0 }
