package header

import (
	"encoding/binary"

	"github.com/malbx/resea/types"
)

const (
	udpSrcPort  = 0
	udpDstPort  = 2
	udpLength   = 4
	udpChecksum = 6
)

// UDPFields contains the fields of a UDP packet. It is used to describe the
// fields of a packet that needs to be encoded
type UDPFields struct {
	// SrcPort is the "source port" field of a UDP packet
	SrcPort uint16

	// DstPort is the "destination port" field of a UDP packet
	DstPort uint16

	// Length is the "length" field of a UDP packet
	Length uint16

	// Checksum is the "checksum" field of a UDP packet
	Checksum uint16
}

const (
	// UDPMinimumSize is the minimum size of a valid UDP packet
	UDPMinimumSize = 8

	// UDPMaximumSize is the largest length the 16 bit length field can hold
	UDPMaximumSize = 0xffff

	// UDPMaximumPayloadSize is the largest payload a single UDP packet can
	// carry
	UDPMaximumPayloadSize = UDPMaximumSize - UDPMinimumSize

	// UDPProtocolNumber is UDP's transport protocol number
	UDPProtocolNumber types.TransportProtocolNumber = 17
)

// UDP represents a UDP header stored in a byte array
// The accessors don't check boundaries; the slice must hold at least
// UDPMinimumSize bytes
type UDP []byte

var _ Transport = UDP(nil)

// SourcePort returns the "source port" field of the udp header
func (b UDP) SourcePort() uint16 {
	return binary.BigEndian.Uint16(b[udpSrcPort:])
}

// DestinationPort returns the "destination port" field of the udp header
func (b UDP) DestinationPort() uint16 {
	return binary.BigEndian.Uint16(b[udpDstPort:])
}

// Length returns the "length" field of the udp header
func (b UDP) Length() uint16 {
	return binary.BigEndian.Uint16(b[udpLength:])
}

// Checksum returns the "checksum" field of the udp header
func (b UDP) Checksum() uint16 {
	return binary.BigEndian.Uint16(b[udpChecksum:])
}

// Payload returns the data following the udp header
func (b UDP) Payload() []byte {
	return b[UDPMinimumSize:]
}

// SetSourcePort sets the "source port" field of the udp header
func (b UDP) SetSourcePort(port uint16) {
	binary.BigEndian.PutUint16(b[udpSrcPort:], port)
}

// SetDestinationPort sets the "destination port" field of the udp header
func (b UDP) SetDestinationPort(port uint16) {
	binary.BigEndian.PutUint16(b[udpDstPort:], port)
}

// SetLength sets the "length" field of the udp header
func (b UDP) SetLength(length uint16) {
	binary.BigEndian.PutUint16(b[udpLength:], length)
}

// SetChecksum sets the "checksum" field of the udp header. Lower layers use
// it to fill in a real checksum over the zero placeholder
func (b UDP) SetChecksum(checksum uint16) {
	binary.BigEndian.PutUint16(b[udpChecksum:], checksum)
}

// IsValid reports whether b holds a complete udp packet: a full header whose
// length field covers at least the header and no more than len(b)
func (b UDP) IsValid() bool {
	if len(b) < UDPMinimumSize {
		return false
	}

	length := int(b.Length())
	return length >= UDPMinimumSize && length <= len(b)
}

// Encode encodes all the fields of the udp header
func (b UDP) Encode(u *UDPFields) {
	binary.BigEndian.PutUint16(b[udpSrcPort:], u.SrcPort)
	binary.BigEndian.PutUint16(b[udpDstPort:], u.DstPort)
	binary.BigEndian.PutUint16(b[udpLength:], u.Length)
	binary.BigEndian.PutUint16(b[udpChecksum:], u.Checksum)
}
