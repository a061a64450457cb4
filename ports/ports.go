// Package ports provides PortManager that manages allocating, reserving and releasing ports

package ports

import (
	"math"
	"math/rand"
	"sync"

	"github.com/malbx/resea/types"
)

const (
	// firstEphemeral is the first ephemeral port
	firstEphemeral types.Port = 16000

	anyIPAddress = types.Address("")
)

type portDescriptor struct {
	transport types.TransportProtocolNumber
	port      types.Port
}

// bindAddresses is a set of IP addresses
type bindAddresses map[types.Address]struct{}

// PortManager manages allocating, reserving and releasing ports
type PortManager struct {
	mu             sync.RWMutex
	allocatedPorts map[portDescriptor]bindAddresses
}

// NewPortManager creates new PortManager
func NewPortManager() *PortManager {
	return &PortManager{
		allocatedPorts: make(map[portDescriptor]bindAddresses),
	}
}

// isAvailable checks whether an IP address is available to bind to
func (b bindAddresses) isAvailable(addr types.Address) bool {
	if addr == anyIPAddress {
		return len(b) == 0
	}

	// If all addresses for this portDescriptor are already bound, no
	// address is available
	if _, ok := b[anyIPAddress]; ok {
		return false
	}

	if _, ok := b[addr]; ok {
		return false
	}

	return true
}

// PickEphemeralPort randomly chooses a starting point and iterates over all
// possible ephemeral ports, allowing the caller to decide whether a given port
// is suitable for its needs, and stopping when a port is found or an error occurs
func (s *PortManager) PickEphemeralPort(testPort func(p types.Port) (bool, error)) (port types.Port, err error) {
	count := uint32(math.MaxUint16 - firstEphemeral + 1)
	offset := uint32(rand.Int31n(int32(count)))

	for i := uint32(0); i < count; i++ {
		port = firstEphemeral + types.Port((offset+i)%count)
		ok, err := testPort(port)
		if err != nil {
			return 0, err
		}

		if ok {
			return port, nil
		}
	}

	return 0, types.ErrNoPortAvailable
}

// IsPortAvailable tests if the given port is available on the given transport
func (s *PortManager) IsPortAvailable(transport types.TransportProtocolNumber, addr types.Address, port types.Port) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if addrs, ok := s.allocatedPorts[portDescriptor{transport, port}]; ok {
		return addrs.isAvailable(addr)
	}
	return true
}

// ReservePort marks a port/IP combination as reserved so that it cannot be
// reserved by another endpoint. If port is zero, ReservePort will search for
// an unreserved ephemeral port and reserve it, returning its value in the
// "port" return value
func (s *PortManager) ReservePort(transport types.TransportProtocolNumber, addr types.Address, port types.Port) (reservedPort types.Port, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// If a port is specified, just try to reserve it
	if port != 0 {
		if !s.reserveSpecifiedPort(transport, addr, port) {
			return 0, types.ErrPortInUse
		}
		return port, nil
	}

	// A port wasn't specified, so try to find one
	return s.PickEphemeralPort(func(p types.Port) (bool, error) {
		return s.reserveSpecifiedPort(transport, addr, p), nil
	})
}

// reserveSpecifiedPort tries to reserve the given port
func (s *PortManager) reserveSpecifiedPort(transport types.TransportProtocolNumber, addr types.Address, port types.Port) bool {
	desc := portDescriptor{transport, port}
	m, ok := s.allocatedPorts[desc]
	if ok && !m.isAvailable(addr) {
		return false
	}

	if !ok {
		m = make(bindAddresses)
		s.allocatedPorts[desc] = m
	}
	m[addr] = struct{}{}

	return true
}

// ReleasePort releases the reservation on a port/IP combination so that it can
// be reserved by other endpoints
func (s *PortManager) ReleasePort(transport types.TransportProtocolNumber, addr types.Address, port types.Port) {
	s.mu.Lock()
	defer s.mu.Unlock()

	desc := portDescriptor{transport, port}
	m := s.allocatedPorts[desc]
	delete(m, addr)
	if len(m) == 0 {
		delete(s.allocatedPorts, desc)
	}
}
