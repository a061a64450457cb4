// Command pcap_echo replays the udp datagrams of a capture file through a
// datagram endpoint and records the echoes it sends back to another capture
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
