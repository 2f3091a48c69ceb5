package tcp

import (
	"github.com/YaoZengzeng/microtcp/internal/header"
	"github.com/YaoZengzeng/microtcp/internal/seqnum"
)

// Sender is the external collaborator this package hands finished
// datagrams to: the tunnel interface (internal/tuntap.Device satisfies it).
type Sender interface {
	Write(buf []byte) error
}

// bufferCap is the scratch buffer size the emitter writes into, matching
// spec.md §5's single fixed 1500-byte emission buffer.
const bufferCap = 1500

// emit builds an IPv4+TCP datagram from the connection's templates plus
// payload, computes the checksum, writes it to w, and advances SND.NXT. It
// implements spec.md §4.3 steps 1-8: SEQ/ACK come from the connection's own
// send/recv sequence spaces, not from the caller.
func (c *Connection) emit(w Sender, payload []byte) (int, error) {
	var buf [bufferCap]byte

	flags := c.pendingFlags
	syn := flags&header.FlagSyn != 0
	fin := flags&header.FlagFin != 0

	ipHdr := header.IPv4(buf[:header.IPv4MinimumSize])
	tcpHdr := header.TCP(buf[header.IPv4MinimumSize : header.IPv4MinimumSize+header.TCPMinimumSize])

	size := header.IPv4MinimumSize + header.TCPMinimumSize + len(payload)
	if size > len(buf) {
		size = len(buf)
	}
	payloadSpace := size - header.IPv4MinimumSize - header.TCPMinimumSize

	ipFields := c.ipFields(uint16(size))
	ipHdr.Encode(&ipFields)
	ipHdr.SetChecksum(ipHdr.CalculateChecksum())

	tcpHdr.Encode(&header.TCPFields{
		SrcPort:    c.tcp.srcPort,
		DstPort:    c.tcp.dstPort,
		SeqNum:     uint32(c.Send.nxt),
		AckNum:     uint32(c.Recv.nxt),
		Flags:      flags,
		WindowSize: uint16(c.Recv.wnd),
	})

	w2 := copy(tcpHdr.Payload()[:payloadSpace], payload)

	partial := header.PseudoHeaderChecksum(header.ProtocolTCP, c.ip.srcAddr, c.ip.dstAddr, uint16(header.TCPMinimumSize+w2))
	tcpHdr.SetChecksum(tcpHdr.CalculateChecksum(partial, tcpHdr.Payload()[:w2]))

	out := buf[:header.IPv4MinimumSize+header.TCPMinimumSize+w2]

	advance := seqnumSize(w2, syn, fin)
	c.Send.nxt = c.Send.nxt.Add(advance)

	// Clear SYN/FIN so the next emission, by default, carries neither
	// (spec.md §4.3 step 6).
	c.pendingFlags = 0

	if err := w.Write(out); err != nil {
		return w2, err
	}
	return w2, nil
}

// sendBareACK emits an empty segment carrying the current SND.NXT/RCV.NXT
// with only the ACK flag set: the acceptor's response to an unacceptable
// segment (spec.md §4.2).
func (c *Connection) sendBareACK(w Sender) error {
	c.pendingFlags = header.FlagAck
	_, err := c.emit(w, nil)
	return err
}

// sendRST emits a standalone RST segment with SEQ=0, ACK=0, as spec.md
// §4.3 describes: a convenience that does not touch the connection's send
// or receive sequence spaces. It is unreachable from the current state
// machine (see design note Q4) but kept available, matching the source.
func (c *Connection) sendRST(w Sender) error {
	var buf [header.IPv4MinimumSize + header.TCPMinimumSize]byte

	ipHdr := header.IPv4(buf[:header.IPv4MinimumSize])
	tcpHdr := header.TCP(buf[header.IPv4MinimumSize:])

	ipFields := c.ipFields(uint16(len(buf)))
	ipHdr.Encode(&ipFields)
	ipHdr.SetChecksum(ipHdr.CalculateChecksum())

	tcpHdr.Encode(&header.TCPFields{
		SrcPort:    c.tcp.srcPort,
		DstPort:    c.tcp.dstPort,
		SeqNum:     0,
		AckNum:     0,
		Flags:      header.FlagRst,
		WindowSize: uint16(c.Recv.wnd),
	})

	partial := header.PseudoHeaderChecksum(header.ProtocolTCP, c.ip.srcAddr, c.ip.dstAddr, header.TCPMinimumSize)
	tcpHdr.SetChecksum(tcpHdr.CalculateChecksum(partial, nil))

	return w.Write(buf[:])
}

// seqnumSize returns the number of sequence-space octets a segment with n
// payload bytes and the given control bits occupies (spec.md I2/I3: SYN and
// FIN each count as one octet).
func seqnumSize(n int, syn, fin bool) seqnum.Size {
	s := seqnum.Size(n)
	if syn {
		s++
	}
	if fin {
		s++
	}
	return s
}
