package seqnum

import "testing"

// P1: Between(a, a, *) is always false.
func TestBetweenReflexiveIsFalse(t *testing.T) {
	cases := []Value{0, 1, 1000, 1<<31 - 1, 1 << 31, 4294967295}
	for _, a := range cases {
		if Between(a, a, a+5) {
			t.Fatalf("Between(%d, %d, %d+5) = true, want false", a, a, a)
		}
	}
}

// P2: three values on the same short arc, visited in order, are reported
// as between.
func TestBetweenShortArc(t *testing.T) {
	cases := []struct{ s, x, e Value }{
		{10, 20, 30},
		{0, 1, 2},
		{4294967290, 4294967295, 4},   // wraps past the 32-bit boundary
		{4294967290, 2, 100},          // x also wraps
		{1000, 1001, 1011},            // the spec's passive-open scenario
	}
	for _, c := range cases {
		if !Between(c.s, c.x, c.e) {
			t.Fatalf("Between(%d, %d, %d) = false, want true", c.s, c.x, c.e)
		}
	}
}

func TestBetweenOutsideArc(t *testing.T) {
	cases := []struct {
		s, x, e Value
		want    bool
	}{
		{10, 5, 30, false},  // x precedes start
		{10, 40, 30, false}, // x follows end
		{10, 10, 30, false}, // x == start
	}
	for _, c := range cases {
		if got := Between(c.s, c.x, c.e); got != c.want {
			t.Fatalf("Between(%d, %d, %d) = %v, want %v", c.s, c.x, c.e, got, c.want)
		}
	}
}

func TestValueAddWraps(t *testing.T) {
	var v Value = 4294967295
	if got := v.Add(1); got != 0 {
		t.Fatalf("4294967295 + 1 = %d, want 0", got)
	}
}

func TestLessThanHandlesWraparound(t *testing.T) {
	a := Value(4294967290)
	b := Value(5)
	if !a.LessThan(b) {
		t.Fatalf("%d should be considered less than %d across the wrap", a, b)
	}
	if b.LessThan(a) {
		t.Fatalf("%d should not be considered less than %d across the wrap", b, a)
	}
}
