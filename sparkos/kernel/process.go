package kernel

// UID is a Symbian executable identity triplet (UID1/UID2/UID3).
type UID [3]uint32

// Process owns a set of Threads, a process-scoped handle table, and the
// identity/priority metadata the loader stamps on it at creation time.
type Process struct {
	object

	threads    []objectID
	handles    *handleTable
	codeSegment objectID

	priority int32
	uid      UID
	cmdLine  string

	suspended bool // true until RunProcess starts the first thread
	exited    bool
	exitCode  int32
}

func (p *Process) Threads() []objectID { return p.threads }
func (p *Process) Priority() int32     { return p.priority }
func (p *Process) UID() UID            { return p.uid }
func (p *Process) CmdLine() string     { return p.cmdLine }
func (p *Process) Suspended() bool     { return p.suspended }
func (p *Process) Exited() bool        { return p.exited }
