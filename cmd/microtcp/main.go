// Command microtcp runs the user-space TCP/IP stack against a Linux tun
// device: every IPv4 datagram read from the interface is decoded and
// handed to a connection record tracked by internal/demux, the way
// spec.md §2 describes the process's one and only data path.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/YaoZengzeng/microtcp/internal/demux"
	"github.com/YaoZengzeng/microtcp/internal/header"
	"github.com/YaoZengzeng/microtcp/internal/seqnum"
	"github.com/YaoZengzeng/microtcp/internal/tcp"
	"github.com/YaoZengzeng/microtcp/internal/tuntap"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// mtuBudget is the largest datagram this process ever reads or writes: the
// tun device's MTU plus headroom. spec.md §5 fixes this at 1504 bytes.
const mtuBudget = 1504

func main() {
	iface := flag.String("iface", "tun0", "tun interface name")
	metricsAddr := flag.String("metrics-addr", ":9273", "address to serve Prometheus metrics on")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dev, err := tuntap.Open(*iface)
	if err != nil {
		log.Fatal().Err(err).Str("iface", *iface).Msg("failed to open tun device")
	}
	defer dev.Close()

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		log.Info().Str("addr", *metricsAddr).Msg("serving metrics")
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.Error().Err(err).Msg("metrics server exited")
		}
	}()

	log.Info().Str("iface", *iface).Msg("microtcp started")

	table := demux.New()
	buf := make([]byte, mtuBudget)

	for {
		n, err := dev.Read(buf)
		if err != nil {
			log.Fatal().Err(err).Msg("tun read failed")
		}

		if err := handleDatagram(dev, table, buf[:n]); err != nil {
			log.Error().Err(err).Msg("failed to handle datagram")
		}
	}
}

// handleDatagram implements spec.md §2's data flow for a single inbound
// frame: parse the IPv4 header, reject anything that isn't a well-formed
// TCP/IPv4 datagram, resolve the 4-tuple against the connection table, and
// either start a new passive-open record or drive an existing one.
func handleDatagram(w tcp.Sender, table *demux.Table, frame []byte) error {
	ip := header.IPv4(frame)
	if !ip.IsValid(len(frame)) {
		log.Warn().Int("len", len(frame)).Msg("dropping malformed or non-IPv4 datagram")
		return nil
	}
	if ip.Protocol() != header.ProtocolTCP {
		return nil
	}

	tcpHdr := header.TCP(ip.Payload())
	if !tcpHdr.IsValid() {
		log.Warn().Int("len", len(ip.Payload())).Msg("dropping malformed TCP segment")
		return nil
	}

	key := demux.Key{
		SrcAddr: ip.SourceAddress(),
		SrcPort: tcpHdr.SourcePort(),
		DstAddr: ip.DestinationAddress(),
		DstPort: tcpHdr.DestinationPort(),
	}

	seg := tcp.Segment{
		Seq:     seqnum.Value(tcpHdr.SequenceNumber()),
		Ack:     seqnum.Value(tcpHdr.AckNumber()),
		Flags:   tcpHdr.Flags(),
		Window:  tcpHdr.WindowSize(),
		Payload: tcpHdr.Payload(),
	}

	if conn, ok := table.Lookup(key); ok {
		return conn.OnPacket(w, seg)
	}

	if tcpHdr.Flags()&header.FlagSyn == 0 {
		// No record and not a SYN: nothing in this implementation's scope
		// starts a connection except a passive open (spec.md Non-goals:
		// no active open, no simultaneous open).
		return nil
	}

	conn, err := tcp.Accept(w, key.DstAddr, key.SrcAddr, key.DstPort, key.SrcPort, seg)
	if err != nil {
		return err
	}
	table.Insert(key, conn)
	return nil
}
