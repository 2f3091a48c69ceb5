// Package seqnum implements wraparound-correct arithmetic over the 32-bit
// TCP sequence number space (RFC 793 section 3.3).
package seqnum

// Value is a sequence number, interpreted modulo 2^32.
type Value uint32

// Size is the length, in octets, that a segment occupies in the sequence
// space (SYN and FIN each count as one octet, per RFC 793).
type Size uint32

// Add returns v advanced by s, wrapping at 2^32.
func (v Value) Add(s Size) Value {
	return v + Value(s)
}

// Sub returns v moved back by s, wrapping at 2^32.
func (v Value) Sub(s Size) Value {
	return v - Value(s)
}

// Size returns the number of octets between v and w, assuming w does not
// precede v by more than half the sequence space.
func (v Value) Size(w Value) Size {
	return Size(w - v)
}

// LessThan reports whether v precedes w on the sequence circle, i.e. w is
// reachable from v by advancing at least 1 and at most 2^31 octets.
func (v Value) LessThan(w Value) bool {
	return int32(v-w) < 0
}

// InRange reports whether v lies in [a, b) on the sequence circle.
func (v Value) InRange(a, b Value) bool {
	return a.Size(v) < a.Size(b)
}

// Between reports whether x lies strictly between start and end, traversing
// the sequence circle forward from start: start -> x -> end in that order,
// with no two of them equal to each other except possibly start and end.
//
// This is the one wraparound comparison primitive internal/tcp uses for
// every window and ACK check; see RFC 793 section 3.3.
func Between(start, x, end Value) bool {
	if start == x {
		return false
	}
	if start < x {
		// x is between start and end iff end does not fall in [start, x).
		if end >= start && end < x {
			return false
		}
		return true
	}
	// start > x: the only way x is between start and end (wrapping) is if
	// end lies strictly between x and start on the unwrapped line.
	return end > x && end < start
}
