package conv

import (
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

type listCodec[N, F any] struct {
	inner Codec[N, F]
}

// List maps a slice to a foreign list in the same order.
func List[N, F any](c Codec[N, F]) Codec[[]N, ml.List[F]] {
	return listCodec[N, F]{inner: c}
}

// ToForeign folds from the last element toward the first. The list built
// so far and the current head each live in one root that is rewritten per
// element, so the frame does not grow with the list.
func (c listCodec[N, F]) ToForeign(f *interop.Frame, xs []N) interop.Value[ml.List[F]] {
	cr := f.Runtime()
	acc := interop.NewRoot(interop.Immediate[ml.List[F]](f, value.EmptyList))
	defer acc.Close()
	head := interop.NewRoot(interop.Immediate[F](f, value.Unit))
	defer head.Close()

	for i := len(xs) - 1; i >= 0; i-- {
		head.Keep(c.inner.ToForeign(f, xs[i]))
		cell := interop.Alloc[ml.List[F]](f, 2, value.TagCons)
		cell.StoreField(cr, 0, head.Ref())
		cell.StoreField(cr, 1, acc.Ref())
		acc.Keep(cell)
	}
	return interop.Wrap[ml.List[F]](f, acc.Get(cr).Raw())
}

func (c listCodec[N, F]) FromForeign(cr *interop.Runtime, v interop.Value[ml.List[F]]) []N {
	out := make([]N, 0, ListLen(cr, v))
	for cur := interop.Cast[ml.Any](v); cur.IsBlock(); cur = cur.Field(cr, 1) {
		out = append(out, field(cr, c.inner, cur, 0))
	}
	return out
}
