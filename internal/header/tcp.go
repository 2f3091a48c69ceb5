package header

import "encoding/binary"

const (
	tcpSrcPort    = 0
	tcpDstPort    = 2
	tcpSeqNum     = 4
	tcpAckNum     = 8
	tcpDataOffset = 12
	tcpFlagsOff   = 13
	tcpWinSize    = 14
	tcpChecksum   = 16
	tcpUrgentPtr  = 18
)

// Flags that may be set in a TCP segment. Only these six are ever produced
// or consulted; no options are parsed or emitted.
const (
	FlagFin uint8 = 1 << iota
	FlagSyn
	FlagRst
	FlagPsh
	FlagAck
	FlagUrg
)

const (
	// TCPMinimumSize is the size of a TCP header with no options, the only
	// shape this implementation ever produces or accepts.
	TCPMinimumSize = 20
)

// TCPFields describes the fields of a TCP header to be encoded.
type TCPFields struct {
	SrcPort    uint16
	DstPort    uint16
	SeqNum     uint32
	AckNum     uint32
	Flags      uint8
	WindowSize uint16
}

// TCP is a TCP header stored in wire byte order.
type TCP []byte

func (b TCP) SourcePort() uint16      { return binary.BigEndian.Uint16(b[tcpSrcPort:]) }
func (b TCP) DestinationPort() uint16 { return binary.BigEndian.Uint16(b[tcpDstPort:]) }
func (b TCP) SequenceNumber() uint32  { return binary.BigEndian.Uint32(b[tcpSeqNum:]) }
func (b TCP) AckNumber() uint32       { return binary.BigEndian.Uint32(b[tcpAckNum:]) }
func (b TCP) Flags() uint8            { return b[tcpFlagsOff] }
func (b TCP) WindowSize() uint16      { return binary.BigEndian.Uint16(b[tcpWinSize:]) }
func (b TCP) Checksum() uint16        { return binary.BigEndian.Uint16(b[tcpChecksum:]) }

// DataOffset returns the header length in bytes, as carried in the segment.
func (b TCP) DataOffset() int {
	return int(b[tcpDataOffset]>>4) * 4
}

func (b TCP) SYN() bool { return b.Flags()&FlagSyn != 0 }
func (b TCP) FIN() bool { return b.Flags()&FlagFin != 0 }
func (b TCP) RST() bool { return b.Flags()&FlagRst != 0 }
func (b TCP) ACK() bool { return b.Flags()&FlagAck != 0 }

// IsValid checks that b is at least TCPMinimumSize and that its declared
// data offset does not run past the bytes present. Options are rejected:
// this implementation understands only the fixed 20-byte header.
func (b TCP) IsValid() bool {
	if len(b) < TCPMinimumSize {
		return false
	}
	off := b.DataOffset()
	return off == TCPMinimumSize && off <= len(b)
}

// Payload returns the bytes following the header.
func (b TCP) Payload() []byte {
	return b[b.DataOffset():]
}

// Encode writes f into b, which must be at least TCPMinimumSize bytes,
// leaving the checksum field zeroed (call SetChecksum after).
func (b TCP) Encode(f *TCPFields) {
	binary.BigEndian.PutUint16(b[tcpSrcPort:], f.SrcPort)
	binary.BigEndian.PutUint16(b[tcpDstPort:], f.DstPort)
	binary.BigEndian.PutUint32(b[tcpSeqNum:], f.SeqNum)
	binary.BigEndian.PutUint32(b[tcpAckNum:], f.AckNum)
	b[tcpDataOffset] = (TCPMinimumSize / 4) << 4
	b[tcpFlagsOff] = f.Flags
	binary.BigEndian.PutUint16(b[tcpWinSize:], f.WindowSize)
	b.SetChecksum(0)
	binary.BigEndian.PutUint16(b[tcpUrgentPtr:], 0)
}

// SetChecksum overwrites the checksum field.
func (b TCP) SetChecksum(v uint16) {
	binary.BigEndian.PutUint16(b[tcpChecksum:], v)
}

// CalculateChecksum computes the TCP checksum over the header (with its
// checksum field zeroed), the payload, and the IPv4 pseudo-header
// contribution already folded into partial by the caller (see
// PseudoHeaderChecksum). The header is always exactly TCPMinimumSize (even)
// bytes, so chaining the payload after it never misaligns byte pairing.
func (b TCP) CalculateChecksum(partial uint16, payload []byte) uint16 {
	sum := Accumulate(b[:TCPMinimumSize], uint32(partial))
	sum = Accumulate(payload, sum)
	return ^uint16(sum)
}
