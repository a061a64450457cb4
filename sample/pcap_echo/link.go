package main

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"golang.org/x/net/ipv4"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/header"
	"github.com/malbx/resea/types"
)

// pcapLink is a link endpoint that puts an IPv4 header in front of every
// outbound datagram and records the result to a capture
type pcapLink struct {
	w       *pcapgo.Writer
	snapLen uint32

	// local is the source address of outbound packets and ts their capture
	// time. The echo loop sets both before every flush
	local net.IP
	ts    time.Time

	id uint16
}

var _ types.LinkEndpoint = (*pcapLink)(nil)

func newPcapLink(w io.Writer, snapLen uint32) (*pcapLink, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeRaw); err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}

	return &pcapLink{
		w:       pw,
		snapLen: snapLen,
		local:   net.IPv4zero.To4(),
	}, nil
}

func (*pcapLink) MTU() uint32 {
	return ipv4.HeaderLen + header.UDPMaximumSize
}

func (*pcapLink) MaxHeaderLength() uint16 {
	return ipv4.HeaderLen
}

// WritePacket implements types.LinkEndpoint.WritePacket. The IPv4 header is
// rendered by gopacket into the headroom the transport left in pkt
func (l *pcapLink) WritePacket(dst types.Address, pkt *buffer.Prependable, protocol types.TransportProtocolNumber) error {
	if len(dst) != net.IPv4len {
		return fmt.Errorf("destination %s is not an IPv4 address", dst)
	}

	l.id++
	ip := &layers.IPv4{
		Version:  ipv4.Version,
		TTL:      64,
		Id:       l.id,
		Protocol: layers.IPProtocol(protocol),
		SrcIP:    l.local,
		DstIP:    net.IP(dst),
	}

	sb := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(sb, opts, ip, gopacket.Payload(pkt.View())); err != nil {
		return fmt.Errorf("failed to serialize ipv4 header: %w", err)
	}

	hdr := pkt.Prepend(ipv4.HeaderLen)
	if hdr == nil {
		return fmt.Errorf("no headroom for the ipv4 header, %d bytes left", pkt.AvailableLength())
	}
	copy(hdr, sb.Bytes()[:ipv4.HeaderLen])

	data := pkt.View()
	ci := gopacket.CaptureInfo{
		Timestamp:     l.ts,
		Length:        len(data),
		CaptureLength: len(data),
	}
	if ci.CaptureLength > int(l.snapLen) {
		ci.CaptureLength = int(l.snapLen)
		data = data[:l.snapLen]
	}

	return l.w.WritePacket(ci, data)
}
