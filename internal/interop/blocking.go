package interop

import (
	"context"
	"fmt"
	"time"

	"github.com/danmuck/mlbridge/internal/observability"
)

// ReleasingRuntime releases the runtime lock, runs fn, and reacquires the
// lock before returning, including when fn panics. fn must not touch the
// foreign heap; heap access through cr panics while the lock is released.
func (cr *Runtime) ReleasingRuntime(fn func()) {
	Releasing(cr, func() struct{} {
		fn()
		return struct{}{}
	})
}

// Releasing is ReleasingRuntime for work that produces a native result.
func Releasing[R any](cr *Runtime, fn func() R) R {
	if cr.released {
		panic(ErrBlockingSection)
	}
	start := time.Now()
	panicked := true
	// A backend that refuses to release must leave the handle usable.
	cr.backend.EnterBlockingSection()
	cr.released = true
	defer func() {
		cr.backend.LeaveBlockingSection()
		cr.released = false
		// Other goroutines may have run the collector meanwhile.
		cr.allocated()
		if cr.metrics {
			observability.RecordBlockingSection(time.Since(start), panicked)
		}
	}()
	out := fn()
	panicked = false
	return out
}

// Locked acquires the runtime lock for a goroutine that does not hold it,
// runs fn with the handle, and releases the lock again. It is how sibling
// goroutines take turns while the owner sits in a blocking section.
func (cr *Runtime) Locked(ctx context.Context, fn func(cr *Runtime) error) error {
	if err := cr.backend.AcquireRuntime(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrAcquire, err)
	}
	prev := cr.released
	cr.released = false
	defer func() {
		cr.allocated()
		cr.released = prev
		cr.backend.ReleaseRuntime()
	}()
	return fn(cr)
}
