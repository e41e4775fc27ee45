package interop

import (
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

// The allocators below may run the collector. Each one advances the
// runtime epoch, so every unrooted handle issued earlier becomes stale.

// Alloc allocates a block of wosize fields initialised to unit.
func Alloc[T any](f *Frame, wosize int, tag uint8) Value[T] {
	raw := f.cr.heap().Alloc(wosize, tag)
	return Value[T]{raw: raw, cr: f.cr, owner: f, epoch: f.cr.allocated()}
}

// AllocString allocates a string-layout block holding a copy of b. T is
// ml.String or ml.Bytes.
func AllocString[T any](f *Frame, b []byte) Value[T] {
	raw := f.cr.heap().AllocString(b)
	return Value[T]{raw: raw, cr: f.cr, owner: f, epoch: f.cr.allocated()}
}

func AllocDouble(f *Frame, x float64) Value[ml.Float] {
	raw := f.cr.heap().AllocDouble(x)
	return Value[ml.Float]{raw: raw, cr: f.cr, owner: f, epoch: f.cr.allocated()}
}

// AllocBoxed64 allocates a single-field custom box. T is ml.Int32 or
// ml.Int64.
func AllocBoxed64[T any](f *Frame, bits uint64) Value[T] {
	raw := f.cr.heap().AllocBoxed64(bits)
	return Value[T]{raw: raw, cr: f.cr, owner: f, epoch: f.cr.allocated()}
}

// Immediate issues a handle for an immediate word. Immediates are never
// stale.
func Immediate[T any](f *Frame, raw value.Raw) Value[T] {
	return Wrap[T](f, raw)
}
