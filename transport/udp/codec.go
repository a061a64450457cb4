package udp

import (
	"github.com/sirupsen/logrus"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/header"
	"github.com/malbx/resea/types"
)

// Parse consumes a udp header and the payload it announces from c
//
// It returns false when the packet is too short for a header, when the length
// field is smaller than the header itself, or when it claims more bytes than
// c holds. This is network input, so these are not errors: the caller just
// drops the packet. On failure c is left where it was
//
// On success c has advanced past exactly the datagram. The payload of the
// returned header aliases the packet; it must be copied by anyone keeping it
// beyond the lifetime of the packet buffer. The checksum field is ignored
func Parse(c *buffer.Cursor) (src, dst types.Port, hdr types.TransportHeader, ok bool) {
	start := c.Offset()

	v, ok := c.Consume(header.UDPMinimumSize)
	if !ok {
		logger.WithField("remaining", c.Remaining()).Debug("packet too short for a udp header")
		return 0, 0, nil, false
	}

	h := header.UDP(v)
	length := int(h.Length())
	if length < header.UDPMinimumSize {
		// Reject before subtracting, a small length would underflow
		logger.WithField("length", length).Debug("udp length field smaller than the header")
		c.Rewind(start)
		return 0, 0, nil, false
	}

	payload, ok := c.Consume(length - header.UDPMinimumSize)
	if !ok {
		logger.WithFields(logrus.Fields{
			"length":    length,
			"remaining": c.Remaining(),
		}).Debug("udp length field exceeds the packet")
		c.Rewind(start)
		return 0, 0, nil, false
	}

	src = types.NewPort(h.SourcePort())
	dst = types.NewPort(h.DestinationPort())

	return src, dst, &types.UDPTransportHeader{
		SrcPort: src,
		DstPort: dst,
		Payload: payload,
	}, true
}

// Serialize returns the wire form of a udp header carrying payloadLen bytes
// of payload. The checksum field is left zero for a later stage to fill in
//
// payloadLen must not exceed header.UDPMaximumPayloadSize
func Serialize(dst, src types.Port, payloadLen int) [header.UDPMinimumSize]byte {
	var b [header.UDPMinimumSize]byte
	header.UDP(b[:]).Encode(&header.UDPFields{
		SrcPort: src.Uint16(),
		DstPort: dst.Uint16(),
		Length:  uint16(header.UDPMinimumSize + payloadLen),
	})
	return b
}
