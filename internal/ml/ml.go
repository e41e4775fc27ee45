// Package ml declares the phantom shape tags carried by typed foreign
// handles. None of these types has a runtime representation; they only
// constrain which conversions and accessors apply to a handle.
package ml

type (
	// Int is a tagged immediate integer.
	Int struct{}
	// Int32 is a boxed 32-bit integer.
	Int32 struct{}
	// Int64 is a boxed 64-bit integer.
	Int64 struct{}
	// Float is a boxed double.
	Float  struct{}
	Bool   struct{}
	Unit   struct{}
	String struct{}
	// Bytes is a mutable byte buffer; it shares the String layout.
	Bytes struct{}
	// Exn is a raised exception value.
	Exn struct{}
	// Closure is a foreign function value.
	Closure struct{}
	// Any erases the shape of a field read out of a block.
	Any struct{}
)

type (
	List[T any]      struct{}
	Option[T any]    struct{}
	Result[A, E any] struct{}
)

type (
	Tuple2[A, B any]                      struct{}
	Tuple3[A, B, C any]                   struct{}
	Tuple4[A, B, C, D any]                struct{}
	Tuple5[A, B, C, D, E any]             struct{}
	Tuple6[A, B, C, D, E, F any]          struct{}
	Tuple7[A, B, C, D, E, F, G any]       struct{}
	Tuple8[A, B, C, D, E, F, G, H any]    struct{}
	Tuple9[A, B, C, D, E, F, G, H, I any] struct{}
)
