// Package udp contains the implementation of the UDP transport protocol. To use
// it in the networking stack, this package must be added to the project, and
// activated on the stack by passing udp.ProtocolName as one of the transport
// protocols when calling stack.New(). Then endpoints can be created by passing
// udp.ProtocolNumber as the transport protocol number when calling
// Stack.NewEndpoint()

package udp

import (
	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/header"
	"github.com/malbx/resea/stack"
	"github.com/malbx/resea/types"
	"github.com/malbx/resea/waiter"
)

const (
	// ProtocolName is the string representation of the udp protocol name
	ProtocolName = "udp"

	// ProtocolNumber is the udp protocol number
	ProtocolNumber = header.UDPProtocolNumber
)

type protocol struct {
	// opts is applied to every endpoint created afterwards
	opts Options
}

// Number returns the udp protocol number
func (*protocol) Number() types.TransportProtocolNumber {
	return ProtocolNumber
}

// Connectionless reports that udp endpoints have no connection to close
func (*protocol) Connectionless() bool {
	return true
}

// NewEndpoint creates a new udp endpoint
func (p *protocol) NewEndpoint(bindAddr types.FullAddress, wq *waiter.Queue) (types.Socket, error) {
	return NewEndpoint(bindAddr, wq, p.opts), nil
}

// MinimumPacketSize returns the minimum valid udp packet size
func (*protocol) MinimumPacketSize() int {
	return header.UDPMinimumSize
}

// ParsePorts returns the source and destination ports stored in the given udp
// packet
func (*protocol) ParsePorts(v buffer.View) (src, dst types.Port, err error) {
	if len(v) < header.UDPMinimumSize {
		return 0, 0, types.ErrMalformedHeader
	}
	h := header.UDP(v)
	return types.NewPort(h.SourcePort()), types.NewPort(h.DestinationPort()), nil
}

// Parse implements stack.TransportProtocol.Parse
func (*protocol) Parse(c *buffer.Cursor) (src, dst types.Port, hdr types.TransportHeader, ok bool) {
	return Parse(c)
}

// SetOption implements stack.TransportProtocol.SetOption. It accepts Options
func (p *protocol) SetOption(option interface{}) error {
	switch o := option.(type) {
	case Options:
		if o.MaxTxQueue < 0 || o.MaxRxQueue < 0 || o.HeaderRoom < 0 {
			return types.ErrUnknownProtocolOption
		}
		p.opts = o
		return nil

	default:
		return types.ErrUnknownProtocolOption
	}
}

// Option implements stack.TransportProtocol.Option
func (p *protocol) Option(option interface{}) error {
	switch o := option.(type) {
	case *Options:
		*o = p.opts
		return nil

	default:
		return types.ErrUnknownProtocolOption
	}
}

func init() {
	stack.RegisterTransportProtocolFactory(ProtocolName, func() stack.TransportProtocol {
		return &protocol{}
	})
}
