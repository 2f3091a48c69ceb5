// Package testutil provides packet-property assertions for tests, in the
// style of the teacher repo's checker package: small composable checker
// functions passed to a top-level IPv4/TCP validator.
package testutil

import (
	"testing"

	"github.com/YaoZengzeng/microtcp/internal/header"
)

// TCPChecker inspects a parsed TCP header and fails t if a property does
// not hold.
type TCPChecker func(t *testing.T, tcp header.TCP)

// IPv4AndTCP parses b as an IPv4 datagram carrying a TCP segment, validates
// the IPv4 and TCP checksums, and runs every checker against the TCP
// header. It is the round-trip assertion spec.md §8 calls for: "feeding
// any emitted datagram back through an IPv4/TCP decoder reproduces the
// template's port pair (swapped), checksum validates, total length
// matches."
func IPv4AndTCP(t *testing.T, b []byte, checkers ...TCPChecker) {
	t.Helper()

	ip := header.IPv4(b)
	if !ip.IsValid(len(b)) {
		t.Fatalf("not a valid IPv4 datagram: %x", b)
	}
	if xsum := ip.CalculateChecksum(); xsum != 0 && xsum != 0xffff {
		t.Fatalf("bad IPv4 checksum: 0x%x", xsum)
	}
	if int(ip.TotalLength()) != len(b) {
		t.Fatalf("IPv4 total length %d does not match datagram size %d", ip.TotalLength(), len(b))
	}

	tcp := header.TCP(ip.Payload())
	if !tcp.IsValid() {
		t.Fatalf("not a valid TCP segment: %x", []byte(tcp))
	}

	TCPChecksumValid(ip.SourceAddress(), ip.DestinationAddress())(t, tcp)

	for _, c := range checkers {
		c(t, tcp)
	}
}

// TCPChecksumValid checks the TCP checksum the way the teacher's own
// checker.TCP() does: fold the IPv4 pseudo-header (source address,
// destination address, zero byte, protocol, TCP length), then the TCP
// header and payload, into one RFC 1071 accumulation, and require the
// result to be 0 or 0xffff (ones'-complement's two representations of
// zero). This is the one check that would catch a wrong pseudo-header
// field order or a broken checksum chain in internal/header.
func TCPChecksumValid(srcAddr, dstAddr [4]byte) TCPChecker {
	return func(t *testing.T, tcp header.TCP) {
		t.Helper()
		partial := header.PseudoHeaderChecksum(header.ProtocolTCP, srcAddr, dstAddr, uint16(len(tcp)))
		sum := header.Accumulate(tcp, uint32(partial))
		if xsum := uint16(sum); xsum != 0 && xsum != 0xffff {
			t.Fatalf("bad TCP checksum: 0x%x, checksum in segment: 0x%x", xsum, tcp.Checksum())
		}
	}
}

// SeqNum checks SEG.SEQ.
func SeqNum(want uint32) TCPChecker {
	return func(t *testing.T, tcp header.TCP) {
		t.Helper()
		if got := tcp.SequenceNumber(); got != want {
			t.Fatalf("SEG.SEQ = %d, want %d", got, want)
		}
	}
}

// AckNum checks SEG.ACK.
func AckNum(want uint32) TCPChecker {
	return func(t *testing.T, tcp header.TCP) {
		t.Helper()
		if got := tcp.AckNumber(); got != want {
			t.Fatalf("SEG.ACK = %d, want %d", got, want)
		}
	}
}

// Flags checks that exactly the given flag bits are set.
func Flags(want uint8) TCPChecker {
	return func(t *testing.T, tcp header.TCP) {
		t.Helper()
		if got := tcp.Flags(); got != want {
			t.Fatalf("flags = 0x%x, want 0x%x", got, want)
		}
	}
}

// Ports checks the source/destination port pair.
func Ports(src, dst uint16) TCPChecker {
	return func(t *testing.T, tcp header.TCP) {
		t.Helper()
		if tcp.SourcePort() != src || tcp.DestinationPort() != dst {
			t.Fatalf("ports = %d->%d, want %d->%d", tcp.SourcePort(), tcp.DestinationPort(), src, dst)
		}
	}
}
