package types

import (
	"github.com/malbx/resea/buffer"
)

// TransportProtocolNumber is the number of a transport protocol
type TransportProtocolNumber uint32

// Port is a transport layer port. The transport layer enforces no reserved
// range; that policy belongs to whoever owns the endpoint
type Port uint16

// NewPort returns the port with raw value v
func NewPort(v uint16) Port {
	return Port(v)
}

// Uint16 returns the raw value of the port
func (p Port) Uint16() uint16 {
	return uint16(p)
}

// TransportEndpointId is the identifier of a transport layer protocol endpoint
type TransportEndpointId struct {
	// LocalPort is the local port associated with the endpoint
	LocalPort Port

	// LocalAddress is the local [network layer] address associated with
	// the endpoint
	LocalAddress Address
}

// TransportHeader is a transport header parsed out of an inbound packet
// together with the payload it carries. The concrete type tells which
// transport produced it; only the types in this package implement it
type TransportHeader interface {
	// SourcePort returns the value of the "source port" field
	SourcePort() Port

	// DestinationPort returns the value of the "destination port" field
	DestinationPort() Port

	transportHeader()
}

// UDPTransportHeader is the datagram variant of TransportHeader
//
// Payload aliases the packet buffer it was parsed from and is only valid
// while that buffer is
type UDPTransportHeader struct {
	SrcPort Port
	DstPort Port
	Payload buffer.View
}

// SourcePort implements TransportHeader.SourcePort
func (h *UDPTransportHeader) SourcePort() Port { return h.SrcPort }

// DestinationPort implements TransportHeader.DestinationPort
func (h *UDPTransportHeader) DestinationPort() Port { return h.DstPort }

func (*UDPTransportHeader) transportHeader() {}

// TCPTransportHeader is the byte stream variant of TransportHeader. It is
// produced and consumed by the stream transport
type TCPTransportHeader struct {
	SrcPort Port
	DstPort Port
	SeqNum  uint32
	AckNum  uint32
	Flags   uint8
	Window  uint16
	Payload buffer.View
}

// SourcePort implements TransportHeader.SourcePort
func (h *TCPTransportHeader) SourcePort() Port { return h.SrcPort }

// DestinationPort implements TransportHeader.DestinationPort
func (h *TCPTransportHeader) DestinationPort() Port { return h.DstPort }

func (*TCPTransportHeader) transportHeader() {}

// Socket is the capability set every transport endpoint (e.g., tcp, udp)
// exposes to the socket layer. The socket layer dispatches on it without
// knowing the transport kind
//
// Close, Read, Write and Accept only make sense for byte stream transports.
// Datagram endpoints panic when they are called; the socket layer must never
// route them there
type Socket interface {
	// Build dequeues one pending transmission and renders it into a fresh
	// buffer, returning the destination network address. It returns false
	// when there is nothing to send
	Build() (Address, *buffer.Prependable, bool)

	// Receive hands a parsed inbound transport header to the endpoint.
	// hdr and its payload are only valid for the duration of the call
	Receive(src Address, hdr TransportHeader)

	// Close tears down the connection
	Close()

	// Read moves up to length bytes of the received stream into v and
	// returns how many were moved
	Read(v *buffer.View, length int) int

	// Write queues data on the stream
	Write(data []byte) error

	// Accept returns a connection established on a listening endpoint
	Accept() (Socket, bool)

	// Protocol returns the transport protocol number of the endpoint
	Protocol() TransportProtocolNumber

	// BoundAddress returns the address the endpoint is bound to
	BoundAddress() *FullAddress
}
