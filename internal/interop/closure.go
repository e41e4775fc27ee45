package interop

import (
	"fmt"
	"sync"

	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/observability"
	"github.com/danmuck/mlbridge/internal/value"
)

// Closure is a foreign function located by name. The lookup happens on first
// use and is cached per runtime; a missing name is reported as an error, not
// a crash, so callers can treat optional functions as absent.
type Closure struct {
	name string

	mu   sync.Mutex
	cr   *Runtime
	cell *value.Raw
	err  error
}

// NamedClosure declares a closure to be resolved lazily.
func NamedClosure(name string) *Closure {
	return &Closure{name: name}
}

func (c *Closure) Name() string {
	return c.name
}

// Resolve looks the closure up if it has not been looked up against cr yet.
func (c *Closure) Resolve(cr *Runtime) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cr == cr {
		return c.err
	}
	c.cr = cr
	c.cell = nil
	c.err = nil
	cell, ok := cr.heap().NamedValue(c.name)
	if !ok {
		c.err = fmt.Errorf("%w: %s", ErrClosureNotFound, c.name)
		cr.log.Warn().Str("closure", c.name).Msg("interop: named closure missing")
		return c.err
	}
	c.cell = cell
	return nil
}

// CallResult is the two-tag outcome of a closure application: either a
// value of shape R or a raised exception. There is no implicit propagation.
type CallResult[R any] struct {
	value  Value[R]
	exn    Value[ml.Exn]
	failed bool
}

func (r CallResult[R]) Failed() bool {
	return r.failed
}

// Value is the result of a successful call; the zero Value after a failure.
func (r CallResult[R]) Value() Value[R] {
	return r.value
}

// Exception is the raised value of a failed call; the zero Value otherwise.
func (r CallResult[R]) Exception() Value[ml.Exn] {
	return r.exn
}

// Call applies c to one or more arguments. Arguments are read immediately
// before the application, which roots them for its duration. The returned
// handles are scoped to f. The error is non-nil only when c cannot be
// resolved.
func Call[R any](f *Frame, c *Closure, args ...Arg) (CallResult[R], error) {
	cr := f.cr
	if err := c.Resolve(cr); err != nil {
		return CallResult[R]{}, err
	}
	if len(args) == 0 {
		return CallResult[R]{}, fmt.Errorf("%w: %s", ErrNoArguments, c.name)
	}
	raws := make([]value.Raw, len(args))
	for i, a := range args {
		raws[i] = a.rawValue()
	}
	res, exn := cr.heap().Callback(*c.cell, raws...)
	cr.allocated()
	if cr.metrics {
		observability.RecordClosureCall(c.name, exn)
	}
	if exn {
		return CallResult[R]{exn: Wrap[ml.Exn](f, res), failed: true}, nil
	}
	return CallResult[R]{value: Wrap[R](f, res)}, nil
}

// ExceptionMessage renders an exception as "Constructor: message", or just
// the constructor when it carries no string argument.
func ExceptionMessage(cr *Runtime, exn Value[ml.Exn]) string {
	h := cr.heap()
	raw := exn.Raw()
	if !value.IsBlock(raw) || h.Size(raw) == 0 {
		return "exception"
	}
	name := "exception"
	if ctor := h.Field(raw, 0); value.IsBlock(ctor) && h.Tag(ctor) == value.TagString {
		name = string(h.StringBytes(ctor))
	}
	if h.Size(raw) < 2 {
		return name
	}
	arg := h.Field(raw, 1)
	if !value.IsBlock(arg) || h.Tag(arg) != value.TagString {
		return name
	}
	return name + ": " + string(h.StringBytes(arg))
}
