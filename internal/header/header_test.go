package header

import "testing"

func buildDatagram(t *testing.T, payload []byte) []byte {
	t.Helper()

	buf := make([]byte, IPv4MinimumSize+TCPMinimumSize+len(payload))

	ip := IPv4(buf[:IPv4MinimumSize])
	ip.Encode(&IPv4Fields{
		TotalLength: uint16(len(buf)),
		TTL:         DefaultTTL,
		Protocol:    ProtocolTCP,
		SrcAddr:     [4]byte{10, 0, 0, 2},
		DstAddr:     [4]byte{10, 0, 0, 1},
	})
	ip.SetChecksum(ip.CalculateChecksum())

	tcp := TCP(buf[IPv4MinimumSize:])
	tcp.Encode(&TCPFields{
		SrcPort:    1234,
		DstPort:    5678,
		SeqNum:     0,
		AckNum:     1001,
		Flags:      FlagSyn | FlagAck,
		WindowSize: 10,
	})
	copy(tcp.Payload(), payload)

	partial := PseudoHeaderChecksum(ProtocolTCP, ip.SourceAddress(), ip.DestinationAddress(), uint16(TCPMinimumSize+len(payload)))
	tcp.SetChecksum(tcp.CalculateChecksum(partial, payload))

	return buf
}

func TestRoundTripPortsSwappedAndChecksumValidates(t *testing.T) {
	buf := buildDatagram(t, nil)

	ip := IPv4(buf)
	if !ip.IsValid(len(buf)) {
		t.Fatalf("built datagram did not parse back as valid IPv4")
	}
	if xsum := ip.CalculateChecksum(); xsum != 0 && xsum != 0xffff {
		t.Fatalf("bad IPv4 checksum after round-trip: 0x%x", xsum)
	}

	tcp := TCP(ip.Payload())
	if !tcp.IsValid() {
		t.Fatalf("built datagram did not parse back as valid TCP")
	}
	if tcp.SourcePort() != 1234 || tcp.DestinationPort() != 5678 {
		t.Fatalf("ports corrupted in round-trip: got %d->%d", tcp.SourcePort(), tcp.DestinationPort())
	}
	if int(ip.TotalLength()) != len(buf) {
		t.Fatalf("total length %d does not match datagram size %d", ip.TotalLength(), len(buf))
	}
	assertTCPChecksumValid(t, ip, tcp)
}

// assertTCPChecksumValid re-derives the TCP checksum the way
// TCP.CalculateChecksum built it in the first place - pseudo-header, then
// header and payload, one running accumulation - and requires the result
// fold to 0 or 0xffff, RFC 1071's two representations of a valid checksum.
func assertTCPChecksumValid(t *testing.T, ip IPv4, tcp TCP) {
	t.Helper()
	partial := PseudoHeaderChecksum(ProtocolTCP, ip.SourceAddress(), ip.DestinationAddress(), uint16(len(tcp)))
	sum := Accumulate(tcp, uint32(partial))
	if xsum := uint16(sum); xsum != 0 && xsum != 0xffff {
		t.Fatalf("bad TCP checksum after round-trip: 0x%x, checksum in segment: 0x%x", xsum, tcp.Checksum())
	}
}

func TestRoundTripWithPayload(t *testing.T) {
	payload := []byte("hello")
	buf := buildDatagram(t, payload)

	ip := IPv4(buf)
	if !ip.IsValid(len(buf)) {
		t.Fatalf("datagram with payload did not parse back as valid IPv4")
	}
	tcp := TCP(ip.Payload())
	if string(tcp.Payload()) != string(payload) {
		t.Fatalf("payload corrupted: got %q, want %q", tcp.Payload(), payload)
	}
	assertTCPChecksumValid(t, ip, tcp)
}
