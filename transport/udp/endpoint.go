package udp

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/malbx/resea/buffer"
	"github.com/malbx/resea/header"
	"github.com/malbx/resea/ilist"
	"github.com/malbx/resea/types"
	"github.com/malbx/resea/waiter"
)

var logger = logrus.WithField("proto", ProtocolName)

// txPacket is a datagram waiting in the send queue
type txPacket struct {
	ilist.Entry
	dst     types.FullAddress
	payload buffer.View
}

// rxPacket is a received datagram waiting to be read
type rxPacket struct {
	ilist.Entry
	senderAddress types.FullAddress
	payload       buffer.View
}

// Options tunes the queues of an endpoint
type Options struct {
	// MaxTxQueue bounds the number of datagrams waiting to be built. Zero
	// means unbounded. SendTo fails with ErrQueueFull at the bound
	MaxTxQueue int

	// MaxRxQueue bounds the number of received datagrams waiting to be
	// read. Zero means unbounded. Datagrams arriving at the bound are
	// dropped
	MaxRxQueue int

	// HeaderRoom is the headroom reserved in front of every built datagram
	// for the headers of the lower layers
	HeaderRoom int
}

// Endpoint represents a UDP endpoint. It is bound to one local address and
// port for its whole life and has no connection state
//
// An endpoint is not safe for concurrent use. The socket layer must make sure
// at most one call into it is in flight; none of the calls block
type Endpoint struct {
	// The following fields are initialized at creation time and do not
	// change throughout the lifetime of the endpoint
	bindAddr    types.FullAddress
	waiterQueue *waiter.Queue
	opts        Options

	// txList holds *txPacket in the order they were sent
	txList ilist.List

	// rxList holds *rxPacket in the order they were received
	rxList ilist.List
}

var _ types.Socket = (*Endpoint)(nil)

// NewEndpoint creates an endpoint bound to bindAddr. wq, if not nil, is
// notified with waiter.EventIn whenever the receive queue stops being empty
func NewEndpoint(bindAddr types.FullAddress, wq *waiter.Queue, opts Options) *Endpoint {
	return &Endpoint{
		bindAddr:    bindAddr,
		waiterQueue: wq,
		opts:        opts,
	}
}

// SendTo queues payload to be sent to the given address. The endpoint takes
// ownership of payload; the caller must not modify it afterwards
func (e *Endpoint) SendTo(to types.FullAddress, payload buffer.View) error {
	if len(payload) > header.UDPMaximumPayloadSize {
		return types.ErrMessageTooLong
	}

	if e.opts.MaxTxQueue > 0 && e.txList.Len() >= e.opts.MaxTxQueue {
		return types.ErrQueueFull
	}

	e.txList.PushBack(&txPacket{dst: to, payload: payload})

	return nil
}

// Build implements types.Socket.Build. It dequeues the oldest datagram and
// renders it with its udp header in a new buffer
//
// The datagram leaves the queue whatever the caller does with the buffer
func (e *Endpoint) Build() (types.Address, *buffer.Prependable, bool) {
	it := e.txList.PopFront()
	if it == nil {
		return "", nil, false
	}
	p := it.(*txPacket)

	pkt := buffer.NewPrependable(header.UDPMinimumSize + e.opts.HeaderRoom)
	pkt.Append(p.payload)

	hdr := Serialize(p.dst.Port, e.bindAddr.Port, len(p.payload))
	copy(pkt.Prepend(header.UDPMinimumSize), hdr[:])

	return p.dst.Address, pkt, true
}

// Receive implements types.Socket.Receive. hdr must be the datagram variant
// produced by Parse; the payload is copied since the packet it points into
// is reused once the call returns
func (e *Endpoint) Receive(src types.Address, hdr types.TransportHeader) {
	h, ok := hdr.(*types.UDPTransportHeader)
	if !ok {
		panic(fmt.Sprintf("udp: endpoint received a %T transport header", hdr))
	}

	if e.opts.MaxRxQueue > 0 && e.rxList.Len() >= e.opts.MaxRxQueue {
		logger.WithFields(logrus.Fields{
			"local_port":  e.bindAddr.Port,
			"remote_addr": src.String(),
			"remote_port": h.SrcPort,
			"queued":      e.rxList.Len(),
		}).Debug("receive queue full, dropping datagram")
		return
	}

	wasEmpty := e.rxList.Empty()

	e.rxList.PushBack(&rxPacket{
		senderAddress: types.FullAddress{
			Nic:     e.bindAddr.Nic,
			Address: src,
			Port:    h.SrcPort,
		},
		payload: buffer.NewViewFromBytes(h.Payload),
	})

	// Notify any waiters that there's data to be read now
	if wasEmpty && e.waiterQueue != nil {
		e.waiterQueue.Notify(waiter.EventIn)
	}
}

// RecvFrom dequeues the oldest received datagram and optionally returns the
// sender. It returns ErrWouldBlock when nothing has been received
func (e *Endpoint) RecvFrom(addr *types.FullAddress) (buffer.View, error) {
	it := e.rxList.PopFront()
	if it == nil {
		return nil, types.ErrWouldBlock
	}
	p := it.(*rxPacket)

	if addr != nil {
		*addr = p.senderAddress
	}

	return p.payload, nil
}

// Pending returns the number of datagrams waiting to be built and waiting to
// be read
func (e *Endpoint) Pending() (tx, rx int) {
	return e.txList.Len(), e.rxList.Len()
}

// Close is not supported by UDP. There is no connection to tear down; the
// socket layer releases the binding itself
func (*Endpoint) Close() {
	panic("udp: Close called on a datagram endpoint")
}

// Read is not supported by UDP, datagrams are read with RecvFrom
func (*Endpoint) Read(*buffer.View, int) int {
	panic("udp: Read called on a datagram endpoint")
}

// Write is not supported by UDP, datagrams are sent with SendTo
func (*Endpoint) Write([]byte) error {
	panic("udp: Write called on a datagram endpoint")
}

// Accept is not supported by UDP
func (*Endpoint) Accept() (types.Socket, bool) {
	panic("udp: Accept called on a datagram endpoint")
}

// Protocol implements types.Socket.Protocol
func (*Endpoint) Protocol() types.TransportProtocolNumber {
	return ProtocolNumber
}

// BoundAddress implements types.Socket.BoundAddress. The returned address
// belongs to the endpoint and must not be modified
func (e *Endpoint) BoundAddress() *types.FullAddress {
	return &e.bindAddr
}
