// Package sniffer provides a link endpoint wrapper that logs every datagram
// passing through it

package sniffer

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/header"
	"github.com/malbx/resea/types"
)

// LogPackets is a flag used to enable or disable packet logging via the log
// package. Valid values are 0 or 1
var LogPackets uint32 = 1

type endpoint struct {
	lower types.LinkEndpoint
}

// New creates a new sniffer link-layer endpoint. It wraps around lower and
// logs packets as they traverse the endpoint
func New(lower types.LinkEndpoint) types.LinkEndpoint {
	return &endpoint{lower: lower}
}

func (e *endpoint) MTU() uint32 {
	return e.lower.MTU()
}

func (e *endpoint) MaxHeaderLength() uint16 {
	return e.lower.MaxHeaderLength()
}

// WritePacket implements the types.LinkEndpoint interface. It is called by
// higher-level protocols to write packets; it just logs the packet and forwards
// the request to the lower endpoint
func (e *endpoint) WritePacket(dst types.Address, pkt *buffer.Prependable, protocol types.TransportProtocolNumber) error {
	if atomic.LoadUint32(&LogPackets) == 1 {
		LogPacket("send", "", dst, protocol, pkt.View())
	}
	return e.lower.WritePacket(dst, pkt, protocol)
}

// LogPacket logs the given transport packet
func LogPacket(prefix string, src, dst types.Address, protocol types.TransportProtocolNumber, b []byte) {
	fields := logrus.Fields{
		"dst":  dst.String(),
		"size": len(b),
	}
	if src != "" {
		fields["src"] = src.String()
	}

	switch protocol {
	case header.UDPProtocolNumber:
		fields["proto"] = "udp"
		udp := header.UDP(b)
		if !udp.IsValid() {
			logrus.WithFields(fields).Infof("%s malformed udp packet", prefix)
			return
		}
		fields["src_port"] = udp.SourcePort()
		fields["dst_port"] = udp.DestinationPort()
		fields["len"] = udp.Length()
		fields["xsum"] = udp.Checksum()

	default:
		fields["proto"] = protocol
	}

	logrus.WithFields(fields).Info(prefix)
}
