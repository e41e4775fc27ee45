// Package conv converts native Go values to and from foreign values.
//
// A Codec pairs one native type with one foreign shape. ToForeign may
// allocate and returns a handle issued after its last allocation;
// FromForeign only reads. Composite codecs root every intermediate before
// the next allocation, so codecs compose without the caller rooting
// anything.
package conv

import (
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

type Codec[N, F any] interface {
	ToForeign(f *interop.Frame, v N) interop.Value[F]
	FromForeign(cr *interop.Runtime, v interop.Value[F]) N
}

// ToRoot converts v and keeps the result in a new persistent root.
func ToRoot[N, F any](f *interop.Frame, c Codec[N, F], v N) *interop.Root[F] {
	return interop.NewRoot(c.ToForeign(f, v))
}

// FromRef converts the current content of a rooted reference.
func FromRef[N, F any](cr *interop.Runtime, c Codec[N, F], r interop.Ref[F]) N {
	return c.FromForeign(cr, r.Get(cr))
}

type derefCodec[N, F any] struct {
	inner Codec[N, F]
}

// Deref converts through a pointer to the native value.
func Deref[N, F any](c Codec[N, F]) Codec[*N, F] {
	return derefCodec[N, F]{inner: c}
}

func (c derefCodec[N, F]) ToForeign(f *interop.Frame, v *N) interop.Value[F] {
	return c.inner.ToForeign(f, *v)
}

func (c derefCodec[N, F]) FromForeign(cr *interop.Runtime, v interop.Value[F]) *N {
	out := c.inner.FromForeign(cr, v)
	return &out
}

// IsOk reports whether a result holds its success payload. It reads only
// the tag.
func IsOk[A, E any](cr *interop.Runtime, v interop.Value[ml.Result[A, E]]) bool {
	return v.Tag(cr) == value.TagOk
}

func IsSome[T any](v interop.Value[ml.Option[T]]) bool {
	return v.IsBlock()
}

// ListLen walks the spine of a list without converting its elements.
func ListLen[T any](cr *interop.Runtime, v interop.Value[ml.List[T]]) int {
	n := 0
	for cur := interop.Cast[ml.Any](v); cur.IsBlock(); cur = cur.Field(cr, 1) {
		n++
	}
	return n
}

// field converts field i of a block with codec c.
func field[N, F, T any](cr *interop.Runtime, c Codec[N, F], v interop.Value[T], i int) N {
	return c.FromForeign(cr, interop.Cast[F](v.Field(cr, i)))
}
