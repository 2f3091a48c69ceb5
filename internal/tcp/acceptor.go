package tcp

import (
	"github.com/YaoZengzeng/microtcp/internal/header"
	"github.com/YaoZengzeng/microtcp/internal/seqnum"
)

// Segment is the parsed view of an incoming TCP segment this package
// operates on: the 4-tuple has already been resolved to a Connection by the
// demux, so only the sequence-space-relevant fields remain.
type Segment struct {
	Seq     seqnum.Value
	Ack     seqnum.Value
	Flags   uint8
	Window  uint16
	Payload []byte
}

func (s Segment) syn() bool { return s.Flags&header.FlagSyn != 0 }
func (s Segment) fin() bool { return s.Flags&header.FlagFin != 0 }
func (s Segment) ack() bool { return s.Flags&header.FlagAck != 0 }

// segLen returns SEG.LEN: payload length plus one for each of SYN and FIN.
func (s Segment) segLen() seqnum.Size {
	l := seqnum.Size(len(s.Payload))
	if s.syn() {
		l++
	}
	if s.fin() {
		l++
	}
	return l
}

// acceptable implements spec.md §4.2's four-case RFC 793 acceptability
// test, routed entirely through seqnum.Between, the one wraparound
// primitive every window check in this package uses.
func (c *Connection) acceptable(seg Segment) bool {
	slen := seg.segLen()
	wend := c.Recv.nxt.Add(c.Recv.wnd)
	recvNxtMinus1 := c.Recv.nxt.Sub(1)

	switch {
	case slen == 0 && c.Recv.wnd == 0:
		return seg.Seq == c.Recv.nxt
	case slen == 0:
		return seqnum.Between(recvNxtMinus1, seg.Seq, wend)
	case c.Recv.wnd == 0:
		return false
	default:
		if seqnum.Between(recvNxtMinus1, seg.Seq, wend) {
			return true
		}
		last := seg.Seq.Add(slen - 1)
		return seqnum.Between(recvNxtMinus1, last, wend)
	}
}
