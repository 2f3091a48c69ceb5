package tcp

import (
	"github.com/YaoZengzeng/microtcp/internal/header"
	"github.com/YaoZengzeng/microtcp/internal/seqnum"
	"github.com/rs/zerolog/log"
)

// Accept implements spec.md §3's Lifecycle / §4.4's passive open: it is
// called when the demux finds no existing record for a segment carrying
// SYN. It initializes a fresh record in SYN-RECEIVED and emits SYN|ACK.
func Accept(w Sender, localAddr, remoteAddr [4]byte, localPort, remotePort uint16, seg Segment) (*Connection, error) {
	c := newConnection(localAddr, remoteAddr, localPort, remotePort, seg.Seq)

	c.State = StateSynReceived
	c.pendingFlags = header.FlagSyn | header.FlagAck

	metricSegmentsIn.Inc()
	if _, err := c.emit(w, nil); err != nil {
		return nil, err
	}
	metricSegmentsOut.Inc()
	metricConnectionsByState.WithLabelValues(c.State.String()).Inc()

	log.Info().
		Str("conn", c.ID.String()).
		Uint32("irs", uint32(seg.Seq)).
		Str("state", c.State.String()).
		Msg("accepted new connection, sent SYN|ACK")

	return c, nil
}

// OnPacket implements spec.md §4.4's processing rules for every segment on
// an already-established record: acceptability, window advancement, ACK
// validation, and the state transitions of the passive-open + local-close
// path. Open issues Q1, Q2 and Q4 (spec.md §9) are reproduced exactly as
// specified, not silently fixed; Q3 is implemented corrected, as its own
// note calls for.
func (c *Connection) OnPacket(w Sender, seg Segment) error {
	metricSegmentsIn.Inc()

	if !c.acceptable(seg) {
		log.Debug().
			Str("conn", c.ID.String()).
			Uint32("seq", uint32(seg.Seq)).
			Str("state", c.State.String()).
			Msg("unacceptable segment, sending bare ACK")
		metricBareAcksSent.Inc()
		return c.sendBareACK(w)
	}

	// TODO(Q1): recv.nxt is advanced here, before the SYN-RECEIVED ACK
	// check below runs. If that check rejects the ACK and bails, we have
	// already moved our expected sequence number forward. A corrected
	// implementation would advance recv.nxt only after all of a segment's
	// control-bit processing has completed.
	c.Recv.nxt = c.Recv.nxt.Add(seg.segLen())

	if !seg.ack() {
		// RFC 793: if the ACK bit is off, drop the segment and return.
		return nil
	}

	prevState := c.State

	if c.State == StateSynReceived {
		if seqnum.Between(c.Send.una.Sub(1), seg.Ack, c.Send.nxt.Add(1)) {
			c.State = StateEstablished
		} else {
			// TODO(Q4): RFC 793 calls for RST<SEQ=SEG.ACK> here; not
			// implemented, matching the source this was ported from.
		}
	}

	if c.State == StateEstablished || c.State == StateFinWait1 || c.State == StateFinWait2 {
		// SND.UNA =< SEG.ACK =< SND.NXT. A duplicate ACK (SEG.ACK ==
		// SND.UNA) is let through so that a FIN it carries is still
		// processed below.
		if !seqnum.Between(c.Send.una.Sub(1), seg.Ack, c.Send.nxt.Add(1)) {
			return nil
		}
		c.Send.una = seg.Ack

		if c.State == StateEstablished {
			// TODO(Q2): this closes the connection on the first valid
			// post-handshake ACK with no external trigger — a one-shot
			// echo-nothing server, per the source this was ported from.
			// A correct implementation must not close without an
			// external close request.
			c.pendingFlags = header.FlagFin | header.FlagAck
			if _, err := c.emit(w, nil); err != nil {
				return err
			}
			metricSegmentsOut.Inc()
			c.State = StateFinWait1
		}
	}

	if c.State == StateFinWait1 {
		// Q3 fix: the source this was ported from tested
		// send.una == send.iss+1 here, which is "peer acked our SYN", not
		// "peer acked our FIN" - it would fire on the very same ACK that
		// just moved us from ESTABLISHED to FIN-WAIT-1 above. Testing
		// against send.nxt (our sequence number immediately after FIN
		// emission, with no retransmits) is the corrected check and the
		// one spec.md's own Q3 note calls for.
		if c.Send.una == c.Send.nxt {
			c.State = StateFinWait2
		}
	}

	if seg.fin() && c.State == StateFinWait2 {
		c.pendingFlags = header.FlagAck
		if _, err := c.emit(w, nil); err != nil {
			return err
		}
		metricSegmentsOut.Inc()
		c.State = StateTimeWait
	}

	if c.State != prevState {
		metricConnectionsByState.WithLabelValues(prevState.String()).Dec()
		metricConnectionsByState.WithLabelValues(c.State.String()).Inc()
		log.Info().
			Str("conn", c.ID.String()).
			Str("from", prevState.String()).
			Str("to", c.State.String()).
			Msg("state transition")
	}

	return nil
}
