package sim

import (
	"fmt"

	"github.com/danmuck/mlbridge/internal/value"
)

// exceptionName is the constructor carried by exceptions raised from Go.
const exceptionName = "Failure"

// Func is a foreign function implemented in Go. args are rooted for the
// duration of the call and updated in place by collections, so a function
// that allocates must re-read args[i] afterwards rather than keep a copy.
type Func func(h *Heap, args []value.Raw) (value.Raw, error)

// Register binds fn to name as a closure value reachable through
// NamedValue. The caller must hold the master lock.
func (h *Heap) Register(name string, fn Func) {
	h.mustStarted()
	idx := len(h.funcs)
	h.funcs = append(h.funcs, fn)
	clo := h.Alloc(1, value.TagClosure)
	h.StoreField(clo, 0, value.OfInt(int64(idx)))
	cell, ok := h.named[name]
	if !ok {
		cell = new(value.Raw)
		h.named[name] = cell
	}
	*cell = clo
	h.log.Debug().Str("name", name).Int("index", idx).Msg("sim: named closure registered")
}

func (h *Heap) NamedValue(name string) (*value.Raw, bool) {
	cell, ok := h.named[name]
	return cell, ok
}

func (h *Heap) Callback(closure value.Raw, args ...value.Raw) (value.Raw, bool) {
	h.mustStarted()
	if h.Tag(closure) != value.TagClosure {
		panic(fmt.Errorf("%w: callback target tag %d", ErrTagMismatch, h.Tag(closure)))
	}
	idx := int(value.Int(h.Field(closure, 0)))
	fn := h.funcs[idx]

	res, err := h.invoke(fn, append([]value.Raw(nil), args...))
	h.callbacks.Add(1)
	if err != nil {
		h.callbackFails.Add(1)
		return h.raise(err.Error()), true
	}
	return res, false
}

func (h *Heap) invoke(fn Func, args []value.Raw) (value.Raw, error) {
	release := h.pushArgs(args)
	defer release()
	return fn(h, args)
}

func (h *Heap) pushArgs(args []value.Raw) func() {
	h.argRoots = append(h.argRoots, args)
	depth := len(h.argRoots)
	return func() {
		h.argRoots[depth-1] = nil
		h.argRoots = h.argRoots[:depth-1]
	}
}

// raise builds the exception value [| "Failure"; msg |].
func (h *Heap) raise(msg string) value.Raw {
	slots := []value.Raw{value.Unit, value.Unit}
	release := h.pushArgs(slots)
	defer release()
	slots[0] = h.AllocString([]byte(exceptionName))
	slots[1] = h.AllocString([]byte(msg))
	exn := h.Alloc(2, 0)
	h.StoreField(exn, 0, slots[0])
	h.StoreField(exn, 1, slots[1])
	return exn
}

// Protect roots cells for the duration of fn. Functions use it to keep
// intermediate values alive across their own allocations.
func (h *Heap) Protect(cells []value.Raw, fn func()) {
	release := h.pushArgs(cells)
	defer release()
	fn()
}
