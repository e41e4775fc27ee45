package interop

import (
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/value"
)

const frameChunk = 16

// Frame is a scope of native roots, scanned by the collector while open.
// Handles issued by a frame must not outlive it; every slot is released
// together when the frame closes.
type Frame struct {
	cr     *Runtime
	chunks []*[frameChunk]value.Raw
	used   int
	done   bool
}

// WithFrame opens a frame, runs fn, and closes the frame on every exit path.
// Frames nest.
func (cr *Runtime) WithFrame(fn func(f *Frame) error) error {
	f := &Frame{cr: cr}
	depth := cr.heap().PushLocalRoots(f)
	if cr.metrics {
		observability.RecordFrameOpened()
	}
	defer func() {
		f.done = true
		cr.backend.PopLocalRoots(depth)
	}()
	return fn(f)
}

// Runtime returns the runtime handle the frame was opened with.
func (f *Frame) Runtime() *Runtime {
	return f.cr
}

// Slots is the number of rooted slots in use.
func (f *Frame) Slots() int {
	return f.used
}

func (f *Frame) ScanRoots(visit func(cell *value.Raw)) {
	for i := 0; i < f.used; i++ {
		visit(&f.chunks[i/frameChunk][i%frameChunk])
	}
}

func (f *Frame) closed() bool {
	return f.done
}

// slot hands out a cell with a stable address for the life of the frame.
func (f *Frame) slot() *value.Raw {
	i := f.used
	if i/frameChunk == len(f.chunks) {
		f.chunks = append(f.chunks, new([frameChunk]value.Raw))
	}
	f.used++
	cell := &f.chunks[i/frameChunk][i%frameChunk]
	*cell = value.Unit
	return cell
}

// Wrap issues a frame-scoped handle for raw. The caller asserts that raw was
// obtained after the most recent allocation.
func Wrap[T any](f *Frame, raw value.Raw) Value[T] {
	return Value[T]{raw: raw, cr: f.cr, owner: f, epoch: f.cr.epoch}
}

// Keep roots v in a new frame slot.
func Keep[T any](f *Frame, v Value[T]) Ref[T] {
	raw := v.Raw()
	cell := f.slot()
	*cell = raw
	return Ref[T]{cell: cell, owner: f}
}
