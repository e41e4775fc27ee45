package interop

import "errors"

var (
	ErrClosureNotFound = errors.New("interop: named closure not found")
	ErrNoArguments     = errors.New("interop: closure application needs at least one argument")
	ErrAcquire         = errors.New("interop: runtime lock not acquired")

	// Contract violations. These are raised as panics.
	ErrStaleHandle     = errors.New("interop: handle used after an allocation")
	ErrScopeClosed     = errors.New("interop: handle used after its frame or root closed")
	ErrRuntimeReleased = errors.New("interop: heap access inside a blocking section")
	ErrBlockingSection = errors.New("interop: blocking section is not reentrant")
	ErrNoRuntime       = errors.New("interop: value has no runtime")
)
