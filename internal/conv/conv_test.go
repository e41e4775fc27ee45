package conv

import (
	"errors"
	"fmt"
	"math"
	"os"
	"testing"

	"github.com/danmuck/mlbridge/internal/config"
	"github.com/danmuck/mlbridge/internal/foreign/sim"
	"github.com/danmuck/mlbridge/internal/interop"
	"github.com/danmuck/mlbridge/internal/logging"
	"github.com/danmuck/mlbridge/internal/ml"
	"github.com/danmuck/mlbridge/internal/testutil/testlog"
	"github.com/danmuck/mlbridge/internal/value"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Every codec runs against a collector that moves every block on every
// allocation, with stale handle checks on.
var testRuntime *interop.Runtime

func TestMain(m *testing.M) {
	logging.ConfigureTests()
	cfg := config.Default()
	cfg.Backend = sim.BackendName
	cfg.CheckStale = true
	cfg.Heap.Stress = true
	cfg.Heap.InitialWords = 64
	cfg.Metrics.Enabled = false
	cr, err := interop.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "interop init: %v\n", err)
		os.Exit(1)
	}
	testRuntime = cr
	code := m.Run()
	cr.Shutdown()
	os.Exit(code)
}

func roundTrip[N, F any](t *testing.T, c Codec[N, F], in N) N {
	t.Helper()
	var out N
	err := testRuntime.WithFrame(func(f *interop.Frame) error {
		kept := interop.Keep(f, c.ToForeign(f, in))
		cr := f.Runtime()
		cr.Collect()
		out = c.FromForeign(cr, kept.Get(cr))
		return nil
	})
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	return out
}

func checkRoundTrip[N, F any](t *testing.T, c Codec[N, F], in N) {
	t.Helper()
	got := roundTrip(t, c, in)
	if diff := cmp.Diff(in, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestScalarRoundTrips(t *testing.T) {
	testlog.Start(t)
	checkRoundTrip(t, Int, 0)
	checkRoundTrip(t, Int, -42)
	checkRoundTrip(t, Int, 1<<61)
	checkRoundTrip(t, Int, value.MaxInt)
	checkRoundTrip(t, Int, value.MinInt)
	checkRoundTrip(t, Int32AsInt, math.MinInt32)
	checkRoundTrip(t, Int32, math.MinInt32)
	checkRoundTrip(t, Int32, math.MaxInt32)
	checkRoundTrip(t, Int64, math.MinInt64)
	checkRoundTrip(t, Int64, math.MaxInt64)
	checkRoundTrip(t, Float, 3.25)
	checkRoundTrip(t, Float, math.Inf(-1))
	checkRoundTrip(t, Bool, true)
	checkRoundTrip(t, Bool, false)
	checkRoundTrip(t, Unit, struct{}{})
}

func TestIntRejectsValuesOutsideImmediateRange(t *testing.T) {
	testlog.Start(t)
	for _, n := range []int64{value.MaxInt + 1, value.MinInt - 1, math.MaxInt64, math.MinInt64} {
		func() {
			defer func() {
				r := recover()
				err, ok := r.(error)
				if !ok || !errors.Is(err, ErrIntRange) {
					t.Fatalf("Int(%d): expected ErrIntRange panic, got %v", n, r)
				}
			}()
			roundTrip(t, Int, n)
		}()
		checkRoundTrip(t, Int64, n)
	}
}

func TestStringAndBytesRoundTrips(t *testing.T) {
	testlog.Start(t)
	for _, s := range []string{"", "x", "1234567", "12345678", "héllo"} {
		checkRoundTrip(t, String, s)
		checkRoundTrip(t, BytesFromString, s)
		checkRoundTrip(t, StringFromBytes, []byte(s))
		checkRoundTrip(t, Bytes, []byte(s))
	}
}

func TestStringAndBytesShareLayout(t *testing.T) {
	testlog.Start(t)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		cr := f.Runtime()
		s := interop.Keep(f, String.ToForeign(f, "same bytes"))
		b := interop.Keep(f, Bytes.ToForeign(f, []byte("same bytes")))
		sv, bv := s.Get(cr), b.Get(cr)
		if sv.Tag(cr) != value.TagString || bv.Tag(cr) != value.TagString || sv.Size(cr) != bv.Size(cr) {
			t.Fatalf("expected identical string layout")
		}
		if diff := cmp.Diff(sv.Bytes(cr), bv.Bytes(cr)); diff != "" {
			t.Fatalf("content mismatch:\n%s", diff)
		}
		return nil
	})
}

func TestOptionRoundTrips(t *testing.T) {
	testlog.Start(t)
	checkRoundTrip(t, Option(Int), (*int64)(nil))
	checkRoundTrip(t, Option(Int), ptr(int64(7)))
	checkRoundTrip(t, Option(String), ptr("payload"))

	nested := Option(Option(String))
	checkRoundTrip(t, nested, (**string)(nil))
	checkRoundTrip(t, nested, ptr((*string)(nil)))
	checkRoundTrip(t, nested, ptr(ptr("deep")))
}

func TestOptionShape(t *testing.T) {
	testlog.Start(t)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		cr := f.Runtime()
		none := Option(Int).ToForeign(f, nil)
		if IsSome(none) || none.Raw() != value.None {
			t.Fatalf("nil should map to None")
		}
		some := Option(Int).ToForeign(f, ptr(int64(5)))
		if !IsSome(some) || some.Tag(cr) != value.TagSome || some.Size(cr) != 1 {
			t.Fatalf("expected a one-field Some block")
		}
		if n := some.Field(cr, 0).Int(); n != 5 {
			t.Fatalf("Some payload = %d", n)
		}
		return nil
	})
}

func TestResultRoundTrips(t *testing.T) {
	testlog.Start(t)
	c := ResultOf(Int, String)
	checkRoundTrip(t, c, Ok[int64, string](10))
	checkRoundTrip(t, c, Err[int64]("failed"))

	nested := ResultOf(List(String), Option(Float))
	checkRoundTrip(t, nested, Ok[[]string, *float64]([]string{"a", "b"}))
	checkRoundTrip(t, nested, Err[[]string](ptr(2.5)))
}

func TestResultFailureTagReadableWithoutPayload(t *testing.T) {
	testlog.Start(t)
	c := ResultOf(String, String)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		cr := f.Runtime()
		ok := interop.Keep(f, c.ToForeign(f, Ok[string, string]("fine")))
		bad := c.ToForeign(f, Err[string]("broken"))
		if IsOk(cr, bad) || bad.Tag(cr) != value.TagError {
			t.Fatalf("expected error tag, got %d", bad.Tag(cr))
		}
		if !IsOk(cr, ok.Get(cr)) {
			t.Fatalf("expected ok tag")
		}
		return nil
	})
}

func TestListRoundTrips(t *testing.T) {
	testlog.Start(t)
	checkRoundTrip(t, List(Int), []int64(nil))
	checkRoundTrip(t, List(Int), []int64{1, 2, 3, 4, 5})
	checkRoundTrip(t, List(String), []string{"", "one", "two", "three"})
	checkRoundTrip(t, List(List(Int)), [][]int64{{1}, {}, {2, 3}})
	checkRoundTrip(t, List(Option(Int)), []*int64{ptr(int64(1)), nil, ptr(int64(3))})
}

func TestListShape(t *testing.T) {
	testlog.Start(t)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		cr := f.Runtime()
		empty := List(Int).ToForeign(f, nil)
		if empty.Raw() != value.EmptyList || ListLen(cr, empty) != 0 {
			t.Fatalf("empty slice should map to the empty list")
		}

		v := List(Int).ToForeign(f, []int64{10, 20, 30})
		if ListLen(cr, v) != 3 {
			t.Fatalf("ListLen = %d", ListLen(cr, v))
		}
		var got []int64
		for cur := interop.Cast[ml.Any](v); cur.IsBlock(); cur = cur.Field(cr, 1) {
			if cur.Tag(cr) != value.TagCons || cur.Size(cr) != 2 {
				t.Fatalf("unexpected cons cell tag=%d size=%d", cur.Tag(cr), cur.Size(cr))
			}
			got = append(got, cur.Field(cr, 0).Int())
		}
		if diff := cmp.Diff([]int64{10, 20, 30}, got); diff != "" {
			t.Fatalf("list order (-want +got):\n%s", diff)
		}
		return nil
	})
}

func TestListDoesNotGrowFrame(t *testing.T) {
	testlog.Start(t)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		xs := make([]string, 50)
		for i := range xs {
			xs[i] = fmt.Sprintf("item-%d", i)
		}
		List(String).ToForeign(f, xs)
		if f.Slots() != 0 {
			t.Fatalf("list conversion used %d frame slots", f.Slots())
		}
		return nil
	})
}

func TestTupleRoundTrips(t *testing.T) {
	testlog.Start(t)
	checkRoundTrip(t, Tuple2(Int, String), T2[int64, string]{V1: 1, V2: "two"})
	checkRoundTrip(t, Tuple3(String, Float, Option(Int)), T3[string, float64, *int64]{V1: "a", V2: 0.5, V3: ptr(int64(9))})
	checkRoundTrip(t, Tuple4(Bool, Int64, List(Int), Unit), T4[bool, int64, []int64, struct{}]{V1: true, V2: -1, V3: []int64{4, 5}})

	c9 := Tuple9(Int, String, Float, Bool, Int32, Bytes, Option(String), List(String), ResultOf(Int, String))
	in := T9[int64, string, float64, bool, int32, []byte, *string, []string, Result[int64, string]]{
		V1: 1, V2: "2", V3: 3.0, V4: true, V5: 5, V6: []byte("six"),
		V7: ptr("seven"), V8: []string{"e", "i", "g", "h", "t"}, V9: Err[int64]("nine"),
	}
	checkRoundTrip(t, c9, in)
}

func TestTupleShape(t *testing.T) {
	testlog.Start(t)
	_ = testRuntime.WithFrame(func(f *interop.Frame) error {
		cr := f.Runtime()
		v := Tuple3(String, String, String).ToForeign(f, T3[string, string, string]{V1: "x", V2: "y", V3: "z"})
		if v.Tag(cr) != value.TagTuple || v.Size(cr) != 3 {
			t.Fatalf("unexpected tuple tag=%d size=%d", v.Tag(cr), v.Size(cr))
		}
		return nil
	})
}

func TestDerefAndRootHelpers(t *testing.T) {
	testlog.Start(t)
	checkRoundTrip(t, Deref(String), ptr("pointed"))

	cr := testRuntime
	var root *interop.Root[ml.List[ml.String]]
	_ = cr.WithFrame(func(f *interop.Frame) error {
		root = ToRoot(f, List(String), []string{"kept", "across", "frames"})
		return nil
	})
	defer root.Close()
	cr.Collect()
	got := FromRef(cr, List(String), root.Ref())
	if diff := cmp.Diff([]string{"kept", "across", "frames"}, got); diff != "" {
		t.Fatalf("root content (-want +got):\n%s", diff)
	}
}
