package tcp

import (
	"github.com/YaoZengzeng/microtcp/internal/header"
	"github.com/YaoZengzeng/microtcp/internal/seqnum"
	"github.com/rs/xid"
)

// RecvWindow is the receive window this implementation advertises on every
// connection. It is a small fixed constant, not a flow-control value the
// peer's sending rate ever actually has to respect; see spec.md §1.
const RecvWindow = 10

// sendSequenceSpace is RFC 793's "send sequence space" (section 3.2).
type sendSequenceSpace struct {
	iss seqnum.Value // initial send sequence number; pinned to 0, see ISS below
	una seqnum.Value // oldest unacknowledged sequence number
	nxt seqnum.Value // next sequence number to send
	wnd seqnum.Size  // send window as last advertised by the peer
	up  bool         // urgent flag; carried, never consulted

	// wl1/wl2 are the segment sequence/ack number used for the last window
	// update. RFC 793's window-update rule (SND.WL1 < SEG.SEQ ||
	// (SND.WL1 == SEG.SEQ && SND.WL2 <= SEG.ACK) => SND.WND <- SEG.WND)
	// is not wired up to these fields yet: see design note Q5.
	wl1 seqnum.Value
	wl2 seqnum.Value
}

// recvSequenceSpace is RFC 793's "receive sequence space" (section 3.2).
type recvSequenceSpace struct {
	irs seqnum.Value // initial receive sequence number: the peer's SYN SEQ
	nxt seqnum.Value // next sequence number expected from the peer
	wnd seqnum.Size  // receive window advertised locally; pinned to RecvWindow
	up  bool         // urgent flag; carried, never consulted
}

// ISS is the fixed initial send sequence number every connection starts
// from. RFC 793 calls for a slowly incrementing clock-derived ISS to guard
// against old-segment confusion; this implementation deliberately doesn't
// do that (spec.md Non-goals: "no ISN randomization").
const ISS seqnum.Value = 0

// ipTemplate holds the source/destination of the IPv4 header this
// connection emits, already swapped relative to the incoming SYN. Every
// other IPv4 field (TTL, protocol, DSCP) is a repo-wide constant, not
// per-connection state.
type ipTemplate struct {
	srcAddr [4]byte
	dstAddr [4]byte
}

// tcpTemplate holds the source/destination ports this connection emits,
// already swapped relative to the incoming SYN. SEQ, ACK, the advertised
// window (Recv.wnd) and the control flags are filled in per send by the
// emitter (internal/tcp/emit.go); pendingFlags holds the control bits to
// apply to the very next emission.
type tcpTemplate struct {
	srcPort uint16
	dstPort uint16
}

// Connection is the per-4-tuple transmission control block: spec.md §3's
// connection record.
type Connection struct {
	ID xid.ID // correlation id for logs only; not protocol state

	State State
	Send  sendSequenceSpace
	Recv  recvSequenceSpace

	ip  ipTemplate
	tcp tcpTemplate

	// pendingFlags carries the control bits (SYN, ACK, FIN) the next call
	// to emit should set; the emitter clears it after every send (spec.md §4.3
	// step 6).
	pendingFlags uint8
}

func newConnection(localAddr, remoteAddr [4]byte, localPort, remotePort uint16, irs seqnum.Value) *Connection {
	return &Connection{
		ID: xid.New(),
		ip: ipTemplate{
			srcAddr: localAddr,
			dstAddr: remoteAddr,
		},
		tcp: tcpTemplate{
			srcPort: localPort,
			dstPort: remotePort,
		},
		Send: sendSequenceSpace{
			iss: ISS,
			una: ISS,
			nxt: ISS,
			wnd: 0, // unknown until the peer's first segment carries SEG.WND
		},
		Recv: recvSequenceSpace{
			irs: irs,
			nxt: irs.Add(1),
			wnd: RecvWindow,
		},
	}
}

func (c *Connection) ipFields(totalLen uint16) header.IPv4Fields {
	return header.IPv4Fields{
		TotalLength: totalLen,
		TTL:         header.DefaultTTL,
		Protocol:    header.ProtocolTCP,
		SrcAddr:     c.ip.srcAddr,
		DstAddr:     c.ip.dstAddr,
	}
}
