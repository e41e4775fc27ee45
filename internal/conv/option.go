package conv

import (
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

type optionCodec[N, F any] struct {
	inner Codec[N, F]
}

// Option maps a nil pointer to None and a non-nil one to Some.
func Option[N, F any](c Codec[N, F]) Codec[*N, ml.Option[F]] {
	return optionCodec[N, F]{inner: c}
}

func (c optionCodec[N, F]) ToForeign(f *interop.Frame, v *N) interop.Value[ml.Option[F]] {
	if v == nil {
		return interop.Immediate[ml.Option[F]](f, value.None)
	}
	payload := interop.Keep(f, c.inner.ToForeign(f, *v))
	some := interop.Alloc[ml.Option[F]](f, 1, value.TagSome)
	some.StoreField(f.Runtime(), 0, payload)
	return some
}

func (c optionCodec[N, F]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Option[F]]) *N {
	if !v.IsBlock() {
		return nil
	}
	out := field(cr, c.inner, v, 0)
	return &out
}

// Result is the native form of a two-variant success or failure value.
type Result[A, E any] struct {
	Ok    A
	Err   E
	IsErr bool
}

func Ok[A, E any](a A) Result[A, E] {
	return Result[A, E]{Ok: a}
}

func Err[A, E any](e E) Result[A, E] {
	return Result[A, E]{Err: e, IsErr: true}
}

type resultCodec[A, E, FA, FE any] struct {
	ok  Codec[A, FA]
	err Codec[E, FE]
}

func ResultOf[A, E, FA, FE any](ok Codec[A, FA], err Codec[E, FE]) Codec[Result[A, E], ml.Result[FA, FE]] {
	return resultCodec[A, E, FA, FE]{ok: ok, err: err}
}

func (c resultCodec[A, E, FA, FE]) ToForeign(f *interop.Frame, v Result[A, E]) interop.Value[ml.Result[FA, FE]] {
	var (
		payload interop.Arg
		tag     = value.TagOk
	)
	if v.IsErr {
		payload = interop.Keep(f, c.err.ToForeign(f, v.Err))
		tag = value.TagError
	} else {
		payload = interop.Keep(f, c.ok.ToForeign(f, v.Ok))
	}
	blk := interop.Alloc[ml.Result[FA, FE]](f, 1, tag)
	blk.StoreField(f.Runtime(), 0, payload)
	return blk
}

func (c resultCodec[A, E, FA, FE]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Result[FA, FE]]) Result[A, E] {
	if v.Tag(cr) == value.TagError {
		return Err[A](field(cr, c.err, v, 0))
	}
	return Ok[A, E](field(cr, c.ok, v, 0))
}
