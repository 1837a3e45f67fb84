package kernel

import "errors"

// Sentinel error kinds. Host-side code returns these; SymbianCode maps them
// onto the guest-visible KErrXxx integers at the kernel boundary.
var (
	ErrNotFound         = errors.New("kernel: not found")
	ErrAlreadyExists    = errors.New("kernel: already exists")
	ErrPermissionDenied = errors.New("kernel: permission denied")
	ErrInUse            = errors.New("kernel: in use")
	ErrOverflow         = errors.New("kernel: overflow")
	ErrInvalidArgument  = errors.New("kernel: invalid argument")
	ErrCancelled        = errors.New("kernel: cancelled")
	ErrWouldBlock       = errors.New("kernel: would block")
	ErrFatal            = errors.New("kernel: fatal")
	ErrHostIO           = errors.New("kernel: host io")
)

// KErr mirrors the Symbian guest error codes propagated through
// RequestStatus.Complete and synchronous SVC return values.
type KErr int32

const (
	KErrNone         KErr = 0
	KErrNotFound     KErr = -1
	KErrGeneral      KErr = -2
	KErrCancel       KErr = -3
	KErrNoMemory     KErr = -4
	KErrNotSupported KErr = -5
	KErrArgument     KErr = -6
	KErrTotalLossOfPrecision KErr = -7
	KErrBadHandle    KErr = -8
	KErrOverflow     KErr = -9
	KErrUnderflow    KErr = -10
	KErrAlreadyExists KErr = -11
	KErrPathNotFound KErr = -12
	KErrDied         KErr = -13
	KErrInUse        KErr = -14
	KErrServerTerminated KErr = -15
	KErrServerBusy   KErr = -16
	KErrCompletion   KErr = -17
	KErrNotReady     KErr = -18
	KErrPermissionDenied KErr = -46
)

// SymbianCode maps a host error (one of the sentinels above, a wrapped
// sentinel, or any other error) onto a KErr. Unrecognized errors surface as
// KErrGeneral, matching the HostIO error kind's documented fallback.
func SymbianCode(err error) KErr {
	switch {
	case err == nil:
		return KErrNone
	case errors.Is(err, ErrNotFound):
		return KErrNotFound
	case errors.Is(err, ErrAlreadyExists):
		return KErrAlreadyExists
	case errors.Is(err, ErrPermissionDenied):
		return KErrPermissionDenied
	case errors.Is(err, ErrInUse):
		return KErrInUse
	case errors.Is(err, ErrOverflow):
		return KErrOverflow
	case errors.Is(err, ErrInvalidArgument):
		return KErrArgument
	case errors.Is(err, ErrCancelled):
		return KErrCancel
	case errors.Is(err, ErrWouldBlock):
		return KErrNotReady
	case errors.Is(err, ErrFatal):
		return KErrDied
	default:
		return KErrGeneral
	}
}
