package header

import "encoding/binary"

const (
	ipv4VersIHL  = 0
	ipv4TOS      = 1
	ipv4TotalLen = 2
	ipv4ID       = 4
	ipv4FlagsFO  = 6
	ipv4TTL      = 8
	ipv4Protocol = 9
	ipv4Checksum = 10
	ipv4SrcAddr  = 12
	ipv4DstAddr  = 16
)

const (
	// IPv4MinimumSize is the size of an IPv4 header with no options, the
	// only shape this implementation ever produces or accepts.
	IPv4MinimumSize = 20

	// IPv4Version is the value of the version nibble for IPv4.
	IPv4Version = 4

	// IPv4ProtocolNumber is the EtherType-style protocol number for IPv4
	// carried by the tun device's framing (there is none; this is used
	// only to tag parsed frames internally).
	IPv4ProtocolNumber = 0x0800

	// ProtocolTCP is the IPv4 protocol number for TCP.
	ProtocolTCP = 6

	// DefaultTTL is the TTL this implementation stamps on every outgoing
	// datagram.
	DefaultTTL = 64
)

// IPv4Fields describes the fields of an IPv4 header to be encoded. Options
// and fragmentation are not supported: this implementation never sets IHL
// above 5 words and never fragments.
type IPv4Fields struct {
	TOS         uint8
	TotalLength uint16
	ID          uint16
	TTL         uint8
	Protocol    uint8
	SrcAddr     [4]byte
	DstAddr     [4]byte
}

// IPv4 is an IPv4 header stored in wire byte order. Call IsValid before
// trusting any other accessor.
type IPv4 []byte

// IPVersion returns the IP version field, or -1 if b is too short to
// contain it.
func IPVersion(b []byte) int {
	if len(b) < 1 {
		return -1
	}
	return int(b[ipv4VersIHL] >> 4)
}

// HeaderLength returns the header length in bytes.
func (b IPv4) HeaderLength() int {
	return int(b[ipv4VersIHL]&0xf) * 4
}

// TotalLength returns the total datagram length in bytes, header + payload.
func (b IPv4) TotalLength() uint16 {
	return binary.BigEndian.Uint16(b[ipv4TotalLen:])
}

// Protocol returns the encapsulated transport protocol number.
func (b IPv4) Protocol() uint8 {
	return b[ipv4Protocol]
}

// TTL returns the time-to-live field.
func (b IPv4) TTL() uint8 {
	return b[ipv4TTL]
}

// SourceAddress returns the source address.
func (b IPv4) SourceAddress() [4]byte {
	var a [4]byte
	copy(a[:], b[ipv4SrcAddr:ipv4SrcAddr+4])
	return a
}

// DestinationAddress returns the destination address.
func (b IPv4) DestinationAddress() [4]byte {
	var a [4]byte
	copy(a[:], b[ipv4DstAddr:ipv4DstAddr+4])
	return a
}

// Checksum returns the header checksum field as carried on the wire.
func (b IPv4) Checksum() uint16 {
	return binary.BigEndian.Uint16(b[ipv4Checksum:])
}

// Payload returns the bytes following the header, truncated to TotalLength.
func (b IPv4) Payload() []byte {
	hlen := b.HeaderLength()
	tlen := int(b.TotalLength())
	if tlen > len(b) {
		tlen = len(b)
	}
	return b[hlen:tlen]
}

// IsValid performs the minimal structural validation needed before any
// other accessor is safe to call: minimum length, a sane header length, and
// a total length that does not exceed the bytes actually present.
func (b IPv4) IsValid(pktSize int) bool {
	if len(b) < IPv4MinimumSize {
		return false
	}
	if IPVersion(b) != IPv4Version {
		return false
	}
	hlen := b.HeaderLength()
	tlen := int(b.TotalLength())
	if hlen < IPv4MinimumSize || hlen > tlen || tlen > pktSize {
		return false
	}
	return true
}

// Encode writes f into b, which must be at least IPv4MinimumSize bytes,
// leaving the checksum field zeroed (call SetChecksum after).
func (b IPv4) Encode(f *IPv4Fields) {
	b[ipv4VersIHL] = (IPv4Version << 4) | (IPv4MinimumSize / 4)
	b[ipv4TOS] = f.TOS
	binary.BigEndian.PutUint16(b[ipv4TotalLen:], f.TotalLength)
	binary.BigEndian.PutUint16(b[ipv4ID:], f.ID)
	binary.BigEndian.PutUint16(b[ipv4FlagsFO:], 0) // no fragmentation, ever
	b[ipv4TTL] = f.TTL
	b[ipv4Protocol] = f.Protocol
	b.SetChecksum(0)
	copy(b[ipv4SrcAddr:ipv4SrcAddr+4], f.SrcAddr[:])
	copy(b[ipv4DstAddr:ipv4DstAddr+4], f.DstAddr[:])
}

// SetTotalLength overwrites the total length field.
func (b IPv4) SetTotalLength(length uint16) {
	binary.BigEndian.PutUint16(b[ipv4TotalLen:], length)
}

// SetChecksum overwrites the header checksum field.
func (b IPv4) SetChecksum(v uint16) {
	binary.BigEndian.PutUint16(b[ipv4Checksum:], v)
}

// CalculateChecksum computes the header checksum over the header bytes as
// they currently stand (the checksum field itself must be zero).
func (b IPv4) CalculateChecksum() uint16 {
	return Checksum(b[:b.HeaderLength()], 0)
}
