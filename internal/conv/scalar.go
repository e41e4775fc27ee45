package conv

import (
	"errors"
	"fmt"

	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/value"
)

// ErrIntRange is raised as a panic when an int64 does not fit a tagged
// immediate. Int64 carries the full range.
var ErrIntRange = errors.New("conv: integer outside the tagged immediate range")

var (
	// Int covers [value.MinInt, value.MaxInt]; out-of-range input panics.
	Int        Codec[int64, ml.Int]     = intCodec{}
	Int32AsInt Codec[int32, ml.Int]     = int32AsIntCodec{}
	Int32      Codec[int32, ml.Int32]   = int32Codec{}
	Int64      Codec[int64, ml.Int64]   = int64Codec{}
	Float      Codec[float64, ml.Float] = floatCodec{}
	Bool       Codec[bool, ml.Bool]     = boolCodec{}
	Unit       Codec[struct{}, ml.Unit] = unitCodec{}

	String          Codec[string, ml.String] = stringCodec[ml.String]{}
	StringFromBytes Codec[[]byte, ml.String] = bytesCodec[ml.String]{}
	Bytes           Codec[[]byte, ml.Bytes]  = bytesCodec[ml.Bytes]{}
	BytesFromString Codec[string, ml.Bytes]  = stringCodec[ml.Bytes]{}
)

type intCodec struct{}

func (intCodec) ToForeign(f *interop.Frame, v int64) interop.Value[ml.Int] {
	if !value.FitsInt(v) {
		panic(fmt.Errorf("%w: %d", ErrIntRange, v))
	}
	return interop.Immediate[ml.Int](f, value.OfInt(v))
}

func (intCodec) FromForeign(_ *interop.Runtime, v interop.Value[ml.Int]) int64 {
	return v.Int()
}

type int32AsIntCodec struct{}

func (int32AsIntCodec) ToForeign(f *interop.Frame, v int32) interop.Value[ml.Int] {
	return interop.Immediate[ml.Int](f, value.OfInt(int64(v)))
}

func (int32AsIntCodec) FromForeign(_ *interop.Runtime, v interop.Value[ml.Int]) int32 {
	return int32(v.Int())
}

type int32Codec struct{}

func (int32Codec) ToForeign(f *interop.Frame, v int32) interop.Value[ml.Int32] {
	return interop.AllocBoxed64[ml.Int32](f, uint64(int64(v)))
}

func (int32Codec) FromForeign(cr *interop.Runtime, v interop.Value[ml.Int32]) int32 {
	return int32(int64(v.Boxed64(cr)))
}

type int64Codec struct{}

func (int64Codec) ToForeign(f *interop.Frame, v int64) interop.Value[ml.Int64] {
	return interop.AllocBoxed64[ml.Int64](f, uint64(v))
}

func (int64Codec) FromForeign(cr *interop.Runtime, v interop.Value[ml.Int64]) int64 {
	return int64(v.Boxed64(cr))
}

type floatCodec struct{}

func (floatCodec) ToForeign(f *interop.Frame, v float64) interop.Value[ml.Float] {
	return interop.AllocDouble(f, v)
}

func (floatCodec) FromForeign(cr *interop.Runtime, v interop.Value[ml.Float]) float64 {
	return v.Double(cr)
}

type boolCodec struct{}

func (boolCodec) ToForeign(f *interop.Frame, v bool) interop.Value[ml.Bool] {
	return interop.Immediate[ml.Bool](f, value.OfBool(v))
}

func (boolCodec) FromForeign(_ *interop.Runtime, v interop.Value[ml.Bool]) bool {
	return value.Bool(v.Raw())
}

type unitCodec struct{}

func (unitCodec) ToForeign(f *interop.Frame, _ struct{}) interop.Value[ml.Unit] {
	return interop.Immediate[ml.Unit](f, value.Unit)
}

func (unitCodec) FromForeign(*interop.Runtime, interop.Value[ml.Unit]) struct{} {
	return struct{}{}
}

// stringCodec and bytesCodec share the string block layout; T is ml.String
// or ml.Bytes.
type stringCodec[T any] struct{}

func (stringCodec[T]) ToForeign(f *interop.Frame, v string) interop.Value[T] {
	return interop.AllocString[T](f, []byte(v))
}

func (stringCodec[T]) FromForeign(cr *interop.Runtime, v interop.Value[T]) string {
	return string(v.Bytes(cr))
}

type bytesCodec[T any] struct{}

func (bytesCodec[T]) ToForeign(f *interop.Frame, v []byte) interop.Value[T] {
	return interop.AllocString[T](f, v)
}

func (bytesCodec[T]) FromForeign(cr *interop.Runtime, v interop.Value[T]) []byte {
	return v.Bytes(cr)
}
