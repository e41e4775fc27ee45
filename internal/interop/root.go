package interop

import (
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/value"
)

// Root is an exclusively owned heap cell registered with the collector,
// independent of any frame. The cell's address never changes, so its
// content can be rewritten without touching the registration.
//
// A Root must be closed exactly by its owner, with the runtime lock held.
// Roots are not safe for concurrent use.
type Root[T any] struct {
	cr         *Runtime
	cell       *value.Raw
	registered bool
	done       bool
}

// NewRoot copies v into a new cell. The cell is registered only when it
// holds a block; immediates are invisible to the collector.
func NewRoot[T any](v Value[T]) *Root[T] {
	if v.cr == nil {
		panic(ErrNoRuntime)
	}
	r := &Root[T]{cr: v.cr, cell: new(value.Raw)}
	*r.cell = v.Raw()
	r.registerIfBlock()
	return r
}

func (r *Root[T]) registerIfBlock() {
	if r.registered || !value.IsBlock(*r.cell) {
		return
	}
	r.cr.heap().RegisterGlobalRoot(r.cell)
	r.registered = true
	if r.cr.metrics {
		observability.RecordRootRegistered()
	}
}

// Get reads the current content as a handle scoped to the root.
func (r *Root[T]) Get(cr *Runtime) Value[T] {
	return r.Ref().Get(cr)
}

// Ref borrows the root as a rooted reference.
func (r *Root[T]) Ref() Ref[T] {
	return Ref[T]{cell: r.cell, owner: r}
}

// Keep overwrites the cell with v. A cell created over an immediate is
// registered the first time it receives a block; otherwise registration is
// untouched.
func (r *Root[T]) Keep(v Value[T]) Ref[T] {
	*r.cell = v.Raw()
	r.registerIfBlock()
	return r.Ref()
}

// Registered reports whether the cell is currently a collector root.
func (r *Root[T]) Registered() bool {
	return r.registered
}

// Close deregisters the cell if, and only if, it was registered. Closing
// twice is a no-op.
func (r *Root[T]) Close() {
	if r.done {
		return
	}
	r.done = true
	if !r.registered {
		return
	}
	r.cr.heap().RemoveGlobalRoot(r.cell)
	r.registered = false
	if r.cr.metrics {
		observability.RecordRootRemoved()
	}
}

func (r *Root[T]) closed() bool {
	return r.done
}
