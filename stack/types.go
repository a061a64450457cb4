package stack

import (
	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/types"
	"github.com/malbx/resea/waiter"
)

// TransportProtocol is the interface that needs to be implemented by transport
// protocol (e.g., tcp, udp) that want to be part of the networking stack
type TransportProtocol interface {
	// Number returns the transport protocol number
	Number() types.TransportProtocolNumber

	// Connectionless reports whether endpoints of the protocol have no
	// connection. The stack never calls Close on such endpoints
	Connectionless() bool

	// NewEndpoint creates a new endpoint of the transport protocol bound
	// to bindAddr
	NewEndpoint(bindAddr types.FullAddress, wq *waiter.Queue) (types.Socket, error)

	// MinimumPacketSize returns the minimum valid packet size of this
	// transport protocol
	MinimumPacketSize() int

	// ParsePorts returns the source and destination ports stored in a
	// packet of this protocol
	ParsePorts(v buffer.View) (src, dst types.Port, err error)

	// Parse consumes the header and payload of one packet of this
	// protocol from c. It returns false, leaving c untouched, when the
	// bytes don't hold one
	Parse(c *buffer.Cursor) (src, dst types.Port, hdr types.TransportHeader, ok bool)

	// SetOption allows enabling/disabling protocol specific features.
	// SetOption returns an error if the option is not supported or the
	// provided option value is invalid
	SetOption(option interface{}) error

	// Option allows retrieving protocol specific option values
	Option(option interface{}) error
}

// TransportProtocolFactory functions are used by the stack to instantiate
// transport protocols
type TransportProtocolFactory func() TransportProtocol
