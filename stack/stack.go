// Package stack provides the glue between transport protocols and the
// consumers of the networking stack. It opens and binds endpoints, holds
// their port reservations and drives their transmit side

package stack

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/ports"
	"github.com/malbx/resea/types"
	"github.com/malbx/resea/waiter"
)

// Stack is a networking stack, with all supported transport protocols and the
// endpoints opened on them
type Stack struct {
	transportProtocols map[types.TransportProtocolNumber]TransportProtocol

	portManager *ports.PortManager

	mu        sync.Mutex
	endpoints map[types.Socket]types.TransportEndpointId
}

// New allocates a new networking stack with only the requested transport
// protocols configured with default options
func New(transport []string) *Stack {
	s := &Stack{
		transportProtocols: make(map[types.TransportProtocolNumber]TransportProtocol),
		portManager:        ports.NewPortManager(),
		endpoints:          make(map[types.Socket]types.TransportEndpointId),
	}

	// Add specified transport protocols
	for _, name := range transport {
		transProtoFactory, ok := transportProtocols[name]
		if !ok {
			logrus.WithField("proto", name).Warn("stack.New: unknown transport protocol")
			continue
		}
		transProto := transProtoFactory()
		s.transportProtocols[transProto.Number()] = transProto
	}

	return s
}

// SetTransportProtocolOption allows configuring transport protocol specific
// options. Options only apply to endpoints created afterwards
func (s *Stack) SetTransportProtocolOption(transport types.TransportProtocolNumber, option interface{}) error {
	transProto, ok := s.transportProtocols[transport]
	if !ok {
		return types.ErrUnknownProtocol
	}
	return transProto.SetOption(option)
}

// TransportProtocolOption allows retrieving individual protocol level option
// values
func (s *Stack) TransportProtocolOption(transport types.TransportProtocolNumber, option interface{}) error {
	transProto, ok := s.transportProtocols[transport]
	if !ok {
		return types.ErrUnknownProtocol
	}
	return transProto.Option(option)
}

// NewEndpoint creates a new transport layer endpoint of the given protocol
// bound to bindAddr. A zero port picks a free ephemeral one, which is
// visible through the endpoint's BoundAddress
func (s *Stack) NewEndpoint(transport types.TransportProtocolNumber, bindAddr types.FullAddress, wq *waiter.Queue) (types.Socket, error) {
	transProto, ok := s.transportProtocols[transport]
	if !ok {
		return nil, types.ErrUnknownProtocol
	}

	port, err := s.portManager.ReservePort(transport, bindAddr.Address, bindAddr.Port)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"proto": transport,
			"addr":  bindAddr.Address.String(),
			"port":  bindAddr.Port,
		}).WithError(err).Debug("NewEndpoint: ReservePort failed")
		return nil, err
	}
	bindAddr.Port = port

	ep, err := transProto.NewEndpoint(bindAddr, wq)
	if err != nil {
		s.portManager.ReleasePort(transport, bindAddr.Address, port)
		return nil, err
	}

	s.mu.Lock()
	s.endpoints[ep] = types.TransportEndpointId{
		LocalPort:    port,
		LocalAddress: bindAddr.Address,
	}
	s.mu.Unlock()

	return ep, nil
}

// CloseEndpoint releases ep's binding. Connection oriented endpoints are
// closed first; connectionless ones have nothing to close and are left
// alone, whatever they still have queued is discarded with them
func (s *Stack) CloseEndpoint(ep types.Socket) {
	s.mu.Lock()
	id, ok := s.endpoints[ep]
	delete(s.endpoints, ep)
	s.mu.Unlock()

	if !ok {
		return
	}

	transport := ep.Protocol()
	if transProto, ok := s.transportProtocols[transport]; ok && !transProto.Connectionless() {
		ep.Close()
	}

	s.portManager.ReleasePort(transport, id.LocalAddress, id.LocalPort)
}

// Parse consumes one packet of the given transport protocol from c
func (s *Stack) Parse(transport types.TransportProtocolNumber, c *buffer.Cursor) (src, dst types.Port, hdr types.TransportHeader, ok bool) {
	transProto, found := s.transportProtocols[transport]
	if !found {
		return 0, 0, nil, false
	}
	return transProto.Parse(c)
}

// Flush builds every datagram pending on ep and writes it to linkEp, returning
// how many were written. Building is destructive: a datagram whose write
// fails is lost, and Flush stops at the first failure
func Flush(ep types.Socket, linkEp types.LinkEndpoint) (int, error) {
	if linkEp == nil {
		return 0, types.ErrBadLinkEndpoint
	}

	n := 0
	for {
		dst, pkt, ok := ep.Build()
		if !ok {
			return n, nil
		}

		if err := linkEp.WritePacket(dst, pkt, ep.Protocol()); err != nil {
			logrus.WithFields(logrus.Fields{
				"proto": ep.Protocol(),
				"dst":   dst.String(),
			}).WithError(err).Warn("Flush: WritePacket failed")
			return n, err
		}
		n++
	}
}
