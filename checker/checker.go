// Package checker provides helper functions to check datagrams built by the
// transport endpoints in tests

package checker

import (
	"bytes"
	"testing"

	"github.com/malbx/resea/header"
)

// TransportChecker is a function to check a property of a transport packet
type TransportChecker func(*testing.T, header.UDP)

// UDP checks that b holds one complete udp packet whose length field matches
// the buffer exactly, then runs the given checkers on it. For example, to
// check the ports, one would call:
//
// checker.UDP(t, b, checker.SrcPort(x), checker.DstPort(y))
func UDP(t *testing.T, b []byte, checkers ...TransportChecker) {
	t.Helper()

	udp := header.UDP(b)
	if !udp.IsValid() {
		t.Fatalf("Not a valid UDP packet: % x", b)
	}

	if l := int(udp.Length()); l != len(b) {
		t.Fatalf("Bad length field, got %v, want %v", l, len(b))
	}

	for _, f := range checkers {
		f(t, udp)
	}
}

// SrcPort creates a checker that checks the source port
func SrcPort(port uint16) TransportChecker {
	return func(t *testing.T, h header.UDP) {
		t.Helper()
		if p := h.SourcePort(); p != port {
			t.Errorf("Bad source port, got %v, want %v", p, port)
		}
	}
}

// DstPort creates a checker that checks the destination port
func DstPort(port uint16) TransportChecker {
	return func(t *testing.T, h header.UDP) {
		t.Helper()
		if p := h.DestinationPort(); p != port {
			t.Errorf("Bad destination port, got %v, want %v", p, port)
		}
	}
}

// Checksum creates a checker that checks the checksum field
func Checksum(xsum uint16) TransportChecker {
	return func(t *testing.T, h header.UDP) {
		t.Helper()
		if c := h.Checksum(); c != xsum {
			t.Errorf("Bad checksum, got 0x%x, want 0x%x", c, xsum)
		}
	}
}

// PayloadLen creates a checker that checks the payload length
func PayloadLen(plen int) TransportChecker {
	return func(t *testing.T, h header.UDP) {
		t.Helper()
		if l := len(h.Payload()); l != plen {
			t.Errorf("Bad payload length, got %v, want %v", l, plen)
		}
	}
}

// Payload creates a checker that checks the payload bytes
func Payload(want []byte) TransportChecker {
	return func(t *testing.T, h header.UDP) {
		t.Helper()
		if got := h.Payload(); !bytes.Equal(got, want) {
			t.Errorf("Bad payload, got %x, want %x", got, want)
		}
	}
}
