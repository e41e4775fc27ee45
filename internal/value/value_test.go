package value

import "testing"

func TestTaggedIntegerEncoding(t *testing.T) {
	cases := []int64{0, 1, -1, 10, -10, 1 << 40, -(1 << 61), 1<<62 - 1}
	for _, n := range cases {
		r := OfInt(n)
		if !IsImmediate(r) || IsBlock(r) {
			t.Fatalf("OfInt(%d) not immediate: %#x", n, uint64(r))
		}
		if got := Int(r); got != n {
			t.Fatalf("Int(OfInt(%d)) = %d", n, got)
		}
	}
	if !FitsInt(MaxInt) || !FitsInt(MinInt) || FitsInt(MaxInt+1) || FitsInt(MinInt-1) {
		t.Fatalf("unexpected FitsInt boundaries")
	}
	if OfInt(10) != 21 {
		t.Fatalf("expected shift-and-set encoding, got %d", OfInt(10))
	}
}

func TestNullaryConstants(t *testing.T) {
	if Unit != OfInt(0) || False != OfInt(0) || True != OfInt(1) {
		t.Fatalf("unexpected nullary constants: unit=%d false=%d true=%d", Unit, False, True)
	}
	if None != Unit || EmptyList != Unit {
		t.Fatalf("none/empty list must share the first nullary immediate")
	}
	if Bool(OfBool(true)) != true || Bool(OfBool(false)) != false {
		t.Fatalf("bool round trip failed")
	}
}

func TestHeaderLayout(t *testing.T) {
	h := MakeHeader(9, TagString)
	if HeaderSize(h) != 9 || HeaderTag(h) != TagString {
		t.Fatalf("header mismatch: size=%d tag=%d", HeaderSize(h), HeaderTag(h))
	}
	if Scannable(TagString) || Scannable(TagDouble) || !Scannable(TagCons) || !Scannable(TagClosure) {
		t.Fatalf("scannable tag classification is wrong")
	}
}

func TestStringPadding(t *testing.T) {
	for n := 0; n < 40; n++ {
		w := StringWords(n)
		if w*WordSize <= n {
			t.Fatalf("len=%d words=%d leaves no padding byte", n, w)
		}
		if got := StringLen(w, PaddingByte(w, n)); got != n {
			t.Fatalf("len=%d recovered %d", n, got)
		}
	}
}
