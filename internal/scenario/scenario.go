// Package scenario holds the end-to-end call scenarios used by the CLI and
// the diagnostics server. The foreign side of each scenario is provided by
// the simulated backend through Install.
package scenario

import (
	"errors"
	"fmt"

	"github.com/danmuck/mlbridge/internal/conv"
	"github.com/danmuck/mlbridge/internal/foreign/sim"
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
	"github.com/rs/zerolog/log"
)

const (
	TwiceName          = "twice"
	IncrementBytesName = "increment_bytes"

	// Names the foreign program uses to drive root tracking itself.
	LifecycleSetupName    = "ocaml_interop_setup"
	LifecycleTeardownName = "ocaml_interop_teardown"
)

var (
	ErrUnsupportedBackend = errors.New("scenario: backend cannot host scenario functions")
	ErrRaised             = errors.New("scenario: foreign function raised")
)

var (
	twice          = interop.NamedClosure(TwiceName)
	incrementBytes = interop.NamedClosure(IncrementBytesName)
)

// Names lists the scenario functions in registration order.
func Names() []string {
	return []string{TwiceName, IncrementBytesName}
}

// Install registers the foreign side of every scenario. Only the simulated
// backend can host Go-implemented foreign functions.
func Install(cr *interop.Runtime) error {
	h, ok := cr.Backend().(*sim.Heap)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedBackend, cr.Name())
	}
	h.Register(TwiceName, foreignTwice)
	h.Register(IncrementBytesName, foreignIncrementBytes)
	h.Register(LifecycleSetupName, func(h *sim.Heap, args []value.Raw) (value.Raw, error) {
		return interop.LifecycleSetup(h, args[0]), nil
	})
	h.Register(LifecycleTeardownName, func(h *sim.Heap, args []value.Raw) (value.Raw, error) {
		return interop.LifecycleTeardown(h, args[0]), nil
	})
	log.Debug().Strs("functions", Names()).
		Strs("lifecycle", []string{LifecycleSetupName, LifecycleTeardownName}).
		Msg("scenario: foreign functions installed")
	return nil
}

// RunLifecycle calls the named lifecycle hook with unit, the way a
// foreign-driven program would.
func RunLifecycle(cr *interop.Runtime, name string) error {
	return cr.WithFrame(func(f *interop.Frame) error {
		res, err := interop.Call[ml.Unit](f, interop.NamedClosure(name), conv.Unit.ToForeign(f, struct{}{}))
		if err != nil {
			return err
		}
		if res.Failed() {
			return raised(cr, res.Exception())
		}
		return nil
	})
}

func foreignTwice(_ *sim.Heap, args []value.Raw) (value.Raw, error) {
	if !value.IsImmediate(args[0]) {
		return value.Unit, errors.New("twice: expected an int")
	}
	n := value.Int(args[0])
	if n > value.MaxInt/2 || n < value.MinInt/2 {
		return value.Unit, fmt.Errorf("twice: %d overflows", n)
	}
	return value.OfInt(2 * n), nil
}

// foreignIncrementBytes adds one to each of the first n bytes of its buffer
// in place and returns the same buffer.
func foreignIncrementBytes(h *sim.Heap, args []value.Raw) (value.Raw, error) {
	if len(args) < 2 {
		return value.Unit, errors.New("increment_bytes: expected bytes and a count")
	}
	buf, n := args[0], int(value.Int(args[1]))
	if n < 0 || n > h.StringLen(buf) {
		return value.Unit, fmt.Errorf("increment_bytes: count %d out of range", n)
	}
	for i := 0; i < n; i++ {
		h.SetByte(buf, i, h.Byte(buf, i)+1)
	}
	return buf, nil
}

// Twice doubles n on the foreign side.
func Twice(cr *interop.Runtime, n int64) (int64, error) {
	if !value.FitsInt(n) {
		return 0, fmt.Errorf("%w: %d", conv.ErrIntRange, n)
	}
	var out int64
	err := cr.WithFrame(func(f *interop.Frame) error {
		res, err := interop.Call[ml.Int](f, twice, conv.Int.ToForeign(f, n))
		if err != nil {
			return err
		}
		if res.Failed() {
			return raised(cr, res.Exception())
		}
		out = conv.Int.FromForeign(cr, res.Value())
		return nil
	})
	return out, err
}

// IncrementBytes copies s into a foreign byte buffer, has the foreign side
// increment its first n bytes, and copies the result back.
func IncrementBytes(cr *interop.Runtime, s string, n int) (string, error) {
	var out string
	err := cr.WithFrame(func(f *interop.Frame) error {
		buf := interop.Keep(f, conv.BytesFromString.ToForeign(f, s))
		count := conv.Int.ToForeign(f, int64(n))
		res, err := interop.Call[ml.Bytes](f, incrementBytes, buf, count)
		if err != nil {
			return err
		}
		if res.Failed() {
			return raised(cr, res.Exception())
		}
		out = conv.BytesFromString.FromForeign(cr, res.Value())
		return nil
	})
	return out, err
}

func raised(cr *interop.Runtime, exn interop.Value[ml.Exn]) error {
	return fmt.Errorf("%w: %s", ErrRaised, interop.ExceptionMessage(cr, exn))
}
