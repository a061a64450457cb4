package main

import (
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/config"
	"github.com/malbx/resea/link/sniffer"
	"github.com/malbx/resea/stack"
	"github.com/malbx/resea/transport/udp"
	"github.com/malbx/resea/types"
	"github.com/malbx/resea/waiter"
)

type echoStats struct {
	Packets   int
	Echoed    int
	Filtered  int // udp, but not for the echo port
	Malformed int // udp header rejected by the parser
	Skipped   int // not udp over IPv4, or a fragment
}

// echo replays the capture read from in through an endpoint bound to the
// echo port and writes every datagram it sends back to out
func echo(cfg *config.Config, in io.Reader, out io.Writer) (*echoStats, error) {
	r, err := pcapgo.NewReader(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}

	link, err := newPcapLink(out, cfg.Echo.SnapLen)
	if err != nil {
		return nil, err
	}

	s := stack.New([]string{udp.ProtocolName})
	if err := s.SetTransportProtocolOption(udp.ProtocolNumber, udp.Options{
		MaxTxQueue: cfg.Endpoint.MaxTxQueue,
		MaxRxQueue: cfg.Endpoint.MaxRxQueue,
		HeaderRoom: int(link.MaxHeaderLength()),
	}); err != nil {
		return nil, fmt.Errorf("failed to configure udp: %w", err)
	}

	var wq waiter.Queue
	waitEntry, readable := waiter.NewChannelEntry(nil)
	wq.EventRegister(&waitEntry, waiter.EventIn)
	defer wq.EventUnregister(&waitEntry)

	sock, err := s.NewEndpoint(udp.ProtocolNumber, types.FullAddress{Port: types.NewPort(cfg.Echo.Port)}, &wq)
	if err != nil {
		return nil, fmt.Errorf("failed to bind port %d: %w", cfg.Echo.Port, err)
	}
	defer s.CloseEndpoint(sock)
	ep := sock.(*udp.Endpoint)

	lower := sniffer.New(link)
	stats := &echoStats{}

	for {
		data, ci, err := r.ReadPacketData()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read packet %d: %w", stats.Packets+1, err)
		}
		stats.Packets++

		ip := decodeIPv4(data, r.LinkType())
		if ip == nil || ip.Protocol != layers.IPProtocolUDP {
			stats.Skipped++
			continue
		}
		if ip.Flags&layers.IPv4MoreFragments != 0 || ip.FragOffset != 0 {
			logrus.WithField("packet", stats.Packets).Debug("skipping ipv4 fragment")
			stats.Skipped++
			continue
		}

		c := buffer.NewCursor(ip.Payload)
		srcPort, dstPort, hdr, ok := s.Parse(udp.ProtocolNumber, c)
		if !ok {
			stats.Malformed++
			continue
		}
		if dstPort != ep.BoundAddress().Port {
			logrus.WithFields(logrus.Fields{
				"packet":   stats.Packets,
				"src_port": srcPort,
				"dst_port": dstPort,
			}).Debug("datagram not for the echo port")
			stats.Filtered++
			continue
		}

		src := types.Address(ip.SrcIP.To4())
		dst := types.Address(ip.DstIP.To4())
		sniffer.LogPacket("recv", src, dst, udp.ProtocolNumber, ip.Payload[:c.Offset()])
		ep.Receive(src, hdr)

		select {
		case <-readable:
		default:
			// Dropped by a full receive queue
			continue
		}

		for {
			var sender types.FullAddress
			v, err := ep.RecvFrom(&sender)
			if err != nil {
				break
			}
			if err := ep.SendTo(sender, v); err != nil {
				logrus.WithError(err).WithField("packet", stats.Packets).Warn("failed to queue echo")
			}
		}

		// Answer from the address the request was sent to
		link.local = ip.DstIP.To4()
		link.ts = ci.Timestamp

		n, err := stack.Flush(ep, lower)
		stats.Echoed += n
		if err != nil {
			return stats, fmt.Errorf("failed to write echo of packet %d: %w", stats.Packets, err)
		}
	}
}

// decodeIPv4 returns the IPv4 layer of a captured frame, or nil if there is
// none or its header doesn't hold up
func decodeIPv4(data []byte, linkType layers.LinkType) *layers.IPv4 {
	pkt := gopacket.NewPacket(data, linkType, gopacket.DecodeOptions{Lazy: true, NoCopy: true})
	ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok {
		return nil
	}

	b := ip.Contents
	if len(b) < ipv4.HeaderLen || int(b[0]>>4) != ipv4.Version {
		return nil
	}
	if ihl := int(b[0]&0x0f) << 2; ihl < ipv4.HeaderLen || ihl > len(b) {
		return nil
	}

	return ip
}
