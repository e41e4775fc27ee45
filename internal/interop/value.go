package interop

import (
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

// scope is the owner of a handle: a frame or a persistent root.
type scope interface {
	closed() bool
}

// Arg is anything that can be passed to the foreign side as a word: a
// Value or a Ref.
type Arg interface {
	rawValue() value.Raw
}

// Value is a handle to one foreign value of shape T. It is valid within its
// frame or root and only until the next allocation.
type Value[T any] struct {
	raw   value.Raw
	cr    *Runtime
	owner scope
	epoch uint64
}

func (v Value[T]) Raw() value.Raw {
	if v.cr != nil {
		v.cr.check(v.owner, v.epoch, v.raw)
	}
	return v.raw
}

func (v Value[T]) rawValue() value.Raw {
	return v.Raw()
}

func (v Value[T]) IsBlock() bool {
	return value.IsBlock(v.raw)
}

func (v Value[T]) IsImmediate() bool {
	return value.IsImmediate(v.raw)
}

// Runtime returns the runtime the handle was issued by.
func (v Value[T]) Runtime() *Runtime {
	return v.cr
}

func (v Value[T]) Tag(cr *Runtime) uint8 {
	return cr.heap().Tag(v.Raw())
}

func (v Value[T]) Size(cr *Runtime) int {
	return cr.heap().Size(v.Raw())
}

// Field reads field i with its shape erased; Cast restores it.
func (v Value[T]) Field(cr *Runtime, i int) Value[ml.Any] {
	raw := cr.heap().Field(v.Raw(), i)
	return Value[ml.Any]{raw: raw, cr: cr, owner: v.owner, epoch: v.epoch}
}

// StoreField writes x into field i. It does not allocate.
func (v Value[T]) StoreField(cr *Runtime, i int, x Arg) {
	cr.heap().StoreField(v.Raw(), i, x.rawValue())
}

func (v Value[T]) Double(cr *Runtime) float64 {
	return cr.heap().Double(v.Raw())
}

func (v Value[T]) Boxed64(cr *Runtime) uint64 {
	return cr.heap().Boxed64(v.Raw())
}

// Bytes copies a string or bytes block out of the heap.
func (v Value[T]) Bytes(cr *Runtime) []byte {
	return cr.heap().StringBytes(v.Raw())
}

// Int decodes an immediate.
func (v Value[T]) Int() int64 {
	return value.Int(v.Raw())
}

// Cast reinterprets the shape of a handle without touching the value.
func Cast[U, T any](v Value[T]) Value[U] {
	return Value[U]{raw: v.raw, cr: v.cr, owner: v.owner, epoch: v.epoch}
}

// Ref is a rooted reference: it survives allocations for as long as its
// frame or root is open. Reading it yields a fresh Value.
type Ref[T any] struct {
	cell  *value.Raw
	owner scope
}

// Get re-derives a fresh handle from a rooted reference.
func Get[T any](cr *Runtime, r Ref[T]) Value[T] {
	return r.Get(cr)
}

func (r Ref[T]) Get(cr *Runtime) Value[T] {
	if cr.checks && r.owner != nil && r.owner.closed() {
		panic(ErrScopeClosed)
	}
	return Value[T]{raw: *r.cell, cr: cr, owner: r.owner, epoch: cr.epoch}
}

func (r Ref[T]) rawValue() value.Raw {
	if r.owner != nil && r.owner.closed() {
		panic(ErrScopeClosed)
	}
	return *r.cell
}
