package types

import (
	"fmt"
	"net"
)

// Address is a byte slice cast as a string that represents the address of a
// network node. For IPv4 it holds the 4 raw address bytes
type Address string

// String formats IPv4 and IPv6 addresses in their usual notation and any
// other length as hex
func (a Address) String() string {
	switch len(a) {
	case net.IPv4len, net.IPv6len:
		return net.IP(a).String()
	default:
		return fmt.Sprintf("%x", []byte(a))
	}
}

// NicId is a number that uniquely identifies a Nic
type NicId int32

// FullAddress represents a full transport node address, as required by the
// Bind() and SendTo() methods
type FullAddress struct {
	// Nic is the Id of the Nic this address refers to
	// This may not be used by all endpoint types
	Nic NicId

	// Address is the network address. The empty address binds to any
	// local address
	Address Address

	// Port is the transport port
	Port Port
}
