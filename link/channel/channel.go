// Package channel provides a link endpoint that keeps outbound datagrams on a
// Go channel instead of putting them on a wire. Tests and samples read them
// back from there

package channel

import (
	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/types"
)

// PacketInfo holds all the information about an outbound packet
type PacketInfo struct {
	Dst      types.Address
	Data     buffer.View
	Protocol types.TransportProtocolNumber
}

// Endpoint is link layer endpoint that stores outbound packets in a channel
type Endpoint struct {
	mtu       uint32
	maxHeader uint16

	C chan PacketInfo
}

var _ types.LinkEndpoint = (*Endpoint)(nil)

// New creates a new channel endpoint holding up to size packets
func New(size int, mtu uint32, maxHeader uint16) *Endpoint {
	return &Endpoint{
		C:         make(chan PacketInfo, size),
		mtu:       mtu,
		maxHeader: maxHeader,
	}
}

// MTU implements types.LinkEndpoint.MTU. It returns the value initialized
// during construction
func (e *Endpoint) MTU() uint32 {
	return e.mtu
}

// MaxHeaderLength implements types.LinkEndpoint.MaxHeaderLength. It returns
// the value initialized during construction
func (e *Endpoint) MaxHeaderLength() uint16 {
	return e.maxHeader
}

// WritePacket stores outbound packets into the channel. It blocks when the
// channel is full
func (e *Endpoint) WritePacket(dst types.Address, pkt *buffer.Prependable, protocol types.TransportProtocolNumber) error {
	e.C <- PacketInfo{
		Dst:      dst,
		Data:     buffer.NewViewFromBytes(pkt.View()),
		Protocol: protocol,
	}

	return nil
}

// Drain returns every packet currently in the channel without blocking
func (e *Endpoint) Drain() []PacketInfo {
	var pkts []PacketInfo
	for {
		select {
		case p := <-e.C:
			pkts = append(pkts, p)
		default:
			return pkts
		}
	}
}
