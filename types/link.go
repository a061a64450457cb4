package types

import (
	"github.com/malbx/resea/buffer"
)

// LinkEndpoint is the interface implemented by the lower layers that take
// rendered transport datagrams and put them on the wire. Routing, IP framing
// and fragmentation all happen behind it
type LinkEndpoint interface {
	// MTU is the maximum transmission unit for this endpoint. This is usually
	// dictated by the backing physical network; when such a physical network
	// doesn't exist, the limit is generally 64k
	MTU() uint32

	// MaxHeaderLength returns the maximum size of the headers the lower
	// layers prepend. Transport protocols use it to reserve headroom in front
	// of the datagrams they build
	MaxHeaderLength() uint16

	// WritePacket writes a rendered transport datagram addressed to dst.
	// The link takes ownership of pkt
	WritePacket(dst Address, pkt *buffer.Prependable, protocol TransportProtocolNumber) error
}
