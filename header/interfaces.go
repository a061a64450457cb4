package header

// Transport offers generic methods to query and/or update the fields of the
// header of a transport protocol buffer
type Transport interface {
	// SourcePort returns the value of the "source port" field
	SourcePort() uint16

	// DestinationPort returns the value of the "destination port" field
	DestinationPort() uint16

	// Checksum returns the value of the "checksum" field
	Checksum() uint16

	// SetSourcePort sets the value of the "source port" field
	SetSourcePort(uint16)

	// SetDestinationPort sets the value of the "destination port" field
	SetDestinationPort(uint16)

	// SetChecksum sets the value of the "checksum" field
	SetChecksum(uint16)

	// Payload returns the data carried in the transport buffer
	Payload() []byte
}
