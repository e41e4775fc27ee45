package conv

import (
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

// part converts one tuple component into the frame.
type part func(f *interop.Frame) interop.Arg

func partOf[N, F any](c Codec[N, F], v N) part {
	return func(f *interop.Frame) interop.Arg {
		return c.ToForeign(f, v)
	}
}

// buildTuple allocates and roots the tuple block first, then converts and
// stores each component in order. A component is stored before the next one
// is converted.
func buildTuple[T any](f *interop.Frame, parts ...part) interop.Value[T] {
	cr := f.Runtime()
	blk := interop.Keep(f, interop.Alloc[T](f, len(parts), value.TagTuple))
	for i, p := range parts {
		x := p(f)
		blk.Get(cr).StoreField(cr, i, x)
	}
	return blk.Get(cr)
}

// T2 through T9 are the native forms of foreign tuples.
type T2[A, B any] struct {
	V1 A
	V2 B
}

type tuple2Codec[A, B, FA, FB any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
}

func Tuple2[A, B, FA, FB any](a Codec[A, FA], b Codec[B, FB]) Codec[T2[A, B], ml.Tuple2[FA, FB]] {
	return tuple2Codec[A, B, FA, FB]{a: a, b: b}
}

func (c tuple2Codec[A, B, FA, FB]) ToForeign(f *interop.Frame, v T2[A, B]) interop.Value[ml.Tuple2[FA, FB]] {
	return buildTuple[ml.Tuple2[FA, FB]](f, partOf(c.a, v.V1), partOf(c.b, v.V2))
}

func (c tuple2Codec[A, B, FA, FB]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple2[FA, FB]]) T2[A, B] {
	return T2[A, B]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
	}
}

type T3[A, B, C any] struct {
	V1 A
	V2 B
	V3 C
}

type tuple3Codec[A, B, C, FA, FB, FC any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
}

func Tuple3[A, B, C, FA, FB, FC any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC]) Codec[T3[A, B, C], ml.Tuple3[FA, FB, FC]] {
	return tuple3Codec[A, B, C, FA, FB, FC]{a: a, b: b, c: c}
}

func (c tuple3Codec[A, B, C, FA, FB, FC]) ToForeign(f *interop.Frame, v T3[A, B, C]) interop.Value[ml.Tuple3[FA, FB, FC]] {
	return buildTuple[ml.Tuple3[FA, FB, FC]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3))
}

func (c tuple3Codec[A, B, C, FA, FB, FC]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple3[FA, FB, FC]]) T3[A, B, C] {
	return T3[A, B, C]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
	}
}

type T4[A, B, C, D any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
}

type tuple4Codec[A, B, C, D, FA, FB, FC, FD any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
}

func Tuple4[A, B, C, D, FA, FB, FC, FD any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD]) Codec[T4[A, B, C, D], ml.Tuple4[FA, FB, FC, FD]] {
	return tuple4Codec[A, B, C, D, FA, FB, FC, FD]{a: a, b: b, c: c, d: d}
}

func (c tuple4Codec[A, B, C, D, FA, FB, FC, FD]) ToForeign(f *interop.Frame, v T4[A, B, C, D]) interop.Value[ml.Tuple4[FA, FB, FC, FD]] {
	return buildTuple[ml.Tuple4[FA, FB, FC, FD]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4))
}

func (c tuple4Codec[A, B, C, D, FA, FB, FC, FD]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple4[FA, FB, FC, FD]]) T4[A, B, C, D] {
	return T4[A, B, C, D]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
	}
}

type T5[A, B, C, D, E any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
}

type tuple5Codec[A, B, C, D, E, FA, FB, FC, FD, FE any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
	e Codec[E, FE]
}

func Tuple5[A, B, C, D, E, FA, FB, FC, FD, FE any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD], e Codec[E, FE]) Codec[T5[A, B, C, D, E], ml.Tuple5[FA, FB, FC, FD, FE]] {
	return tuple5Codec[A, B, C, D, E, FA, FB, FC, FD, FE]{a: a, b: b, c: c, d: d, e: e}
}

func (c tuple5Codec[A, B, C, D, E, FA, FB, FC, FD, FE]) ToForeign(f *interop.Frame, v T5[A, B, C, D, E]) interop.Value[ml.Tuple5[FA, FB, FC, FD, FE]] {
	return buildTuple[ml.Tuple5[FA, FB, FC, FD, FE]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4), partOf(c.e, v.V5))
}

func (c tuple5Codec[A, B, C, D, E, FA, FB, FC, FD, FE]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple5[FA, FB, FC, FD, FE]]) T5[A, B, C, D, E] {
	return T5[A, B, C, D, E]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
		V5: field(cr, c.e, v, 4),
	}
}

type T6[A, B, C, D, E, F any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
}

type tuple6Codec[A, B, C, D, E, F, FA, FB, FC, FD, FE, FF any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
	e Codec[E, FE]
	f Codec[F, FF]
}

func Tuple6[A, B, C, D, E, F, FA, FB, FC, FD, FE, FF any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD], e Codec[E, FE], f Codec[F, FF]) Codec[T6[A, B, C, D, E, F], ml.Tuple6[FA, FB, FC, FD, FE, FF]] {
	return tuple6Codec[A, B, C, D, E, F, FA, FB, FC, FD, FE, FF]{a: a, b: b, c: c, d: d, e: e, f: f}
}

func (c tuple6Codec[A, B, C, D, E, F, FA, FB, FC, FD, FE, FF]) ToForeign(f *interop.Frame, v T6[A, B, C, D, E, F]) interop.Value[ml.Tuple6[FA, FB, FC, FD, FE, FF]] {
	return buildTuple[ml.Tuple6[FA, FB, FC, FD, FE, FF]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4), partOf(c.e, v.V5), partOf(c.f, v.V6))
}

func (c tuple6Codec[A, B, C, D, E, F, FA, FB, FC, FD, FE, FF]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple6[FA, FB, FC, FD, FE, FF]]) T6[A, B, C, D, E, F] {
	return T6[A, B, C, D, E, F]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
		V5: field(cr, c.e, v, 4),
		V6: field(cr, c.f, v, 5),
	}
}

type T7[A, B, C, D, E, F, G any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
	V7 G
}

type tuple7Codec[A, B, C, D, E, F, G, FA, FB, FC, FD, FE, FF, FG any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
	e Codec[E, FE]
	f Codec[F, FF]
	g Codec[G, FG]
}

func Tuple7[A, B, C, D, E, F, G, FA, FB, FC, FD, FE, FF, FG any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD], e Codec[E, FE], f Codec[F, FF], g Codec[G, FG]) Codec[T7[A, B, C, D, E, F, G], ml.Tuple7[FA, FB, FC, FD, FE, FF, FG]] {
	return tuple7Codec[A, B, C, D, E, F, G, FA, FB, FC, FD, FE, FF, FG]{a: a, b: b, c: c, d: d, e: e, f: f, g: g}
}

func (c tuple7Codec[A, B, C, D, E, F, G, FA, FB, FC, FD, FE, FF, FG]) ToForeign(f *interop.Frame, v T7[A, B, C, D, E, F, G]) interop.Value[ml.Tuple7[FA, FB, FC, FD, FE, FF, FG]] {
	return buildTuple[ml.Tuple7[FA, FB, FC, FD, FE, FF, FG]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4), partOf(c.e, v.V5), partOf(c.f, v.V6), partOf(c.g, v.V7))
}

func (c tuple7Codec[A, B, C, D, E, F, G, FA, FB, FC, FD, FE, FF, FG]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple7[FA, FB, FC, FD, FE, FF, FG]]) T7[A, B, C, D, E, F, G] {
	return T7[A, B, C, D, E, F, G]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
		V5: field(cr, c.e, v, 4),
		V6: field(cr, c.f, v, 5),
		V7: field(cr, c.g, v, 6),
	}
}

type T8[A, B, C, D, E, F, G, H any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
	V7 G
	V8 H
}

type tuple8Codec[A, B, C, D, E, F, G, H, FA, FB, FC, FD, FE, FF, FG, FH any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
	e Codec[E, FE]
	f Codec[F, FF]
	g Codec[G, FG]
	h Codec[H, FH]
}

func Tuple8[A, B, C, D, E, F, G, H, FA, FB, FC, FD, FE, FF, FG, FH any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD], e Codec[E, FE], f Codec[F, FF], g Codec[G, FG], h Codec[H, FH]) Codec[T8[A, B, C, D, E, F, G, H], ml.Tuple8[FA, FB, FC, FD, FE, FF, FG, FH]] {
	return tuple8Codec[A, B, C, D, E, F, G, H, FA, FB, FC, FD, FE, FF, FG, FH]{a: a, b: b, c: c, d: d, e: e, f: f, g: g, h: h}
}

func (c tuple8Codec[A, B, C, D, E, F, G, H, FA, FB, FC, FD, FE, FF, FG, FH]) ToForeign(f *interop.Frame, v T8[A, B, C, D, E, F, G, H]) interop.Value[ml.Tuple8[FA, FB, FC, FD, FE, FF, FG, FH]] {
	return buildTuple[ml.Tuple8[FA, FB, FC, FD, FE, FF, FG, FH]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4), partOf(c.e, v.V5), partOf(c.f, v.V6), partOf(c.g, v.V7), partOf(c.h, v.V8))
}

func (c tuple8Codec[A, B, C, D, E, F, G, H, FA, FB, FC, FD, FE, FF, FG, FH]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple8[FA, FB, FC, FD, FE, FF, FG, FH]]) T8[A, B, C, D, E, F, G, H] {
	return T8[A, B, C, D, E, F, G, H]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
		V5: field(cr, c.e, v, 4),
		V6: field(cr, c.f, v, 5),
		V7: field(cr, c.g, v, 6),
		V8: field(cr, c.h, v, 7),
	}
}

type T9[A, B, C, D, E, F, G, H, I any] struct {
	V1 A
	V2 B
	V3 C
	V4 D
	V5 E
	V6 F
	V7 G
	V8 H
	V9 I
}

type tuple9Codec[A, B, C, D, E, F, G, H, I, FA, FB, FC, FD, FE, FF, FG, FH, FI any] struct {
	a Codec[A, FA]
	b Codec[B, FB]
	c Codec[C, FC]
	d Codec[D, FD]
	e Codec[E, FE]
	f Codec[F, FF]
	g Codec[G, FG]
	h Codec[H, FH]
	i Codec[I, FI]
}

func Tuple9[A, B, C, D, E, F, G, H, I, FA, FB, FC, FD, FE, FF, FG, FH, FI any](a Codec[A, FA], b Codec[B, FB], c Codec[C, FC], d Codec[D, FD], e Codec[E, FE], f Codec[F, FF], g Codec[G, FG], h Codec[H, FH], i Codec[I, FI]) Codec[T9[A, B, C, D, E, F, G, H, I], ml.Tuple9[FA, FB, FC, FD, FE, FF, FG, FH, FI]] {
	return tuple9Codec[A, B, C, D, E, F, G, H, I, FA, FB, FC, FD, FE, FF, FG, FH, FI]{a: a, b: b, c: c, d: d, e: e, f: f, g: g, h: h, i: i}
}

func (c tuple9Codec[A, B, C, D, E, F, G, H, I, FA, FB, FC, FD, FE, FF, FG, FH, FI]) ToForeign(f *interop.Frame, v T9[A, B, C, D, E, F, G, H, I]) interop.Value[ml.Tuple9[FA, FB, FC, FD, FE, FF, FG, FH, FI]] {
	return buildTuple[ml.Tuple9[FA, FB, FC, FD, FE, FF, FG, FH, FI]](f, partOf(c.a, v.V1), partOf(c.b, v.V2), partOf(c.c, v.V3), partOf(c.d, v.V4), partOf(c.e, v.V5), partOf(c.f, v.V6), partOf(c.g, v.V7), partOf(c.h, v.V8), partOf(c.i, v.V9))
}

func (c tuple9Codec[A, B, C, D, E, F, G, H, I, FA, FB, FC, FD, FE, FF, FG, FH, FI]) FromForeign(cr *interop.Runtime, v interop.Value[ml.Tuple9[FA, FB, FC, FD, FE, FF, FG, FH, FI]]) T9[A, B, C, D, E, F, G, H, I] {
	return T9[A, B, C, D, E, F, G, H, I]{
		V1: field(cr, c.a, v, 0),
		V2: field(cr, c.b, v, 1),
		V3: field(cr, c.c, v, 2),
		V4: field(cr, c.d, v, 3),
		V5: field(cr, c.e, v, 4),
		V6: field(cr, c.f, v, 5),
		V7: field(cr, c.g, v, 6),
		V8: field(cr, c.h, v, 7),
		V9: field(cr, c.i, v, 8),
	}
}
