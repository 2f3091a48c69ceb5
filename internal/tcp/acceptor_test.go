package tcp

import (
	"testing"

	"github.com/YaoZengzeng/microtcp/internal/seqnum"
)

// newAcceptorFixture returns a connection whose recv.nxt is 1000 (irs=999)
// and recv.wnd is wnd, for exercising acceptable() in isolation.
func newAcceptorFixture(wnd seqnum.Size) *Connection {
	c := newConnection(localAddr, remoteAddr, localPort, remotePort, seqnum.Value(999))
	c.Recv.wnd = wnd
	return c
}

// TestAcceptableFourCaseTable exercises spec.md §4.2's four cases directly,
// independent of any state transition.
func TestAcceptableFourCaseTable(t *testing.T) {
	cases := []struct {
		name string
		wnd  seqnum.Size
		seg  Segment
		want bool
	}{
		{"zero-len zero-window at recv.nxt", 0, Segment{Seq: 1000}, true},
		{"zero-len zero-window off recv.nxt", 0, Segment{Seq: 1001}, false},
		{"zero-len positive-window in range", 10, Segment{Seq: 1005}, true},
		{"zero-len positive-window out of range", 10, Segment{Seq: 1011}, false},
		{"nonzero-len zero-window always rejected", 0, Segment{Seq: 1000, Payload: []byte("x")}, false},
		{"nonzero-len in range", 10, Segment{Seq: 1005, Payload: []byte("x")}, true},
		{"nonzero-len straddling window end", 10, Segment{Seq: 1009, Payload: []byte("xx")}, true},
		{"nonzero-len entirely past window", 10, Segment{Seq: 1020, Payload: []byte("x")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newAcceptorFixture(tc.wnd)
			if got := c.acceptable(tc.seg); got != tc.want {
				t.Fatalf("acceptable(%+v) with recv.wnd=%d = %v, want %v", tc.seg, tc.wnd, got, tc.want)
			}
		})
	}
}

// TestAcceptableMonotoneInWindow implements spec.md §8's P4: acceptability
// is monotone in recv.wnd. If a segment is acceptable with window W, it
// remains acceptable with any W' > W.
func TestAcceptableMonotoneInWindow(t *testing.T) {
	seg := Segment{Seq: 1005, Payload: []byte("x")}

	accepted := false
	for w := seqnum.Size(0); w <= 64; w++ {
		c := newAcceptorFixture(w)
		got := c.acceptable(seg)
		if accepted && !got {
			t.Fatalf("segment accepted at a smaller window but rejected at recv.wnd=%d", w)
		}
		accepted = accepted || got
	}
	if !accepted {
		t.Fatalf("segment never became acceptable as recv.wnd grew")
	}
}

// TestAcceptableZeroWindowCaseStaysMonotone documents the explicit
// carve-out in P4's statement: a zero-payload segment accepted only at
// W=0 (because SEG.SEQ == recv.nxt exactly) is a degenerate case of the
// same monotone rule, not an exception to it - once W grows past 0, the
// case switches from the "slen==0 && wnd==0" branch to the general
// slen==0 branch, which is *also* satisfied at SEG.SEQ == recv.nxt, so
// the segment stays acceptable. This test pins that down directly.
func TestAcceptableZeroWindowCaseStaysMonotone(t *testing.T) {
	seg := Segment{Seq: 1000}

	for w := seqnum.Size(0); w <= 8; w++ {
		c := newAcceptorFixture(w)
		if !c.acceptable(seg) {
			t.Fatalf("SEG.SEQ == recv.nxt segment rejected at recv.wnd=%d", w)
		}
	}
}
