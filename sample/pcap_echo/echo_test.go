package main

import (
	"bytes"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malbx/resea/checker"
	"github.com/malbx/resea/config"
)

var (
	localIP = net.IPv4(10, 0, 0, 1).To4()
	peerIP  = net.IPv4(10, 0, 0, 2).To4()

	baseTime = time.Unix(1700000000, 0).UTC()
)

func serialize(t *testing.T, l ...gopacket.SerializableLayer) []byte {
	t.Helper()
	sb := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(sb, gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}, l...))
	return sb.Bytes()
}

func ethernet() *layers.Ethernet {
	return &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
		DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
		EthernetType: layers.EthernetTypeIPv4,
	}
}

func ipv4To(proto layers.IPProtocol) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: proto,
		SrcIP:    peerIP,
		DstIP:    localIP,
	}
}

// udpFrame returns an ethernet frame carrying a udp datagram from the peer
func udpFrame(t *testing.T, srcPort, dstPort uint16, payload string) []byte {
	ip := ipv4To(layers.IPProtocolUDP)
	u := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
	require.NoError(t, u.SetNetworkLayerForChecksum(ip))
	return serialize(t, ethernet(), ip, u, gopacket.Payload(payload))
}

// rawFrame returns an ethernet frame carrying payload right after the IPv4
// header
func rawFrame(t *testing.T, proto layers.IPProtocol, payload []byte) []byte {
	return serialize(t, ethernet(), ipv4To(proto), gopacket.Payload(payload))
}

func capture(t *testing.T, frames ...[]byte) *bytes.Buffer {
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65535, layers.LinkTypeEthernet))
	for i, f := range frames {
		require.NoError(t, w.WritePacket(gopacket.CaptureInfo{
			Timestamp:     baseTime.Add(time.Duration(i) * time.Second),
			CaptureLength: len(f),
			Length:        len(f),
		}, f))
	}
	return &buf
}

func defaultConfig(t *testing.T) *config.Config {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Echo.Port = 7
	return cfg
}

type echoed struct {
	ci  gopacket.CaptureInfo
	ip  *layers.IPv4
	udp []byte
}

func readEchoes(t *testing.T, r io.Reader) []echoed {
	pr, err := pcapgo.NewReader(r)
	require.NoError(t, err)
	require.Equal(t, layers.LinkTypeRaw, pr.LinkType())

	var out []echoed
	for {
		data, ci, err := pr.ReadPacketData()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)

		pkt := gopacket.NewPacket(data, layers.LayerTypeIPv4, gopacket.Default)
		ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
		require.True(t, ok, "echo is not IPv4: % x", data)
		out = append(out, echoed{ci: ci, ip: ip, udp: ip.Payload})
	}
}

func TestEcho(t *testing.T) {
	in := capture(t,
		udpFrame(t, 40000, 7, "hello"),
		udpFrame(t, 40001, 9, "not for us"),
		rawFrame(t, layers.IPProtocolICMPv4, []byte{8, 0, 0xf7, 0xff, 0, 0, 0, 0}),
		// Length field smaller than the header
		rawFrame(t, layers.IPProtocolUDP, []byte{0x9c, 0x40, 0x00, 0x07, 0x00, 0x03, 0x00, 0x00}),
		// Too short for a header
		rawFrame(t, layers.IPProtocolUDP, []byte{0x9c, 0x40, 0x00}),
		udpFrame(t, 40002, 7, "world"),
	)

	var out bytes.Buffer
	stats, err := echo(defaultConfig(t), in, &out)
	require.NoError(t, err)
	assert.Equal(t, &echoStats{Packets: 6, Echoed: 2, Filtered: 1, Malformed: 2, Skipped: 1}, stats)

	echoes := readEchoes(t, &out)
	require.Len(t, echoes, 2)

	for i, want := range []struct {
		port    uint16
		payload string
		ts      time.Time
	}{
		{40000, "hello", baseTime},
		{40002, "world", baseTime.Add(5 * time.Second)},
	} {
		e := echoes[i]
		assert.True(t, e.ci.Timestamp.Equal(want.ts), "echo %d at %v, want %v", i, e.ci.Timestamp, want.ts)
		assert.Equal(t, localIP, e.ip.SrcIP.To4())
		assert.Equal(t, peerIP, e.ip.DstIP.To4())
		assert.Equal(t, layers.IPProtocolUDP, e.ip.Protocol)
		assert.Equal(t, uint16(20+8+len(want.payload)), e.ip.Length)

		checker.UDP(t, e.udp,
			checker.SrcPort(7),
			checker.DstPort(want.port),
			checker.Checksum(0),
			checker.Payload([]byte(want.payload)),
		)
	}
}

func TestEchoSnapLen(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Echo.SnapLen = 24

	var out bytes.Buffer
	_, err := echo(cfg, capture(t, udpFrame(t, 40000, 7, "truncated")), &out)
	require.NoError(t, err)

	pr, err := pcapgo.NewReader(&out)
	require.NoError(t, err)
	data, ci, err := pr.ReadPacketData()
	require.NoError(t, err)
	assert.Len(t, data, 24)
	assert.Equal(t, 20+8+len("truncated"), ci.Length)
}

func TestEchoBadCapture(t *testing.T) {
	var out bytes.Buffer
	_, err := echo(defaultConfig(t), bytes.NewBufferString("not a capture"), &out)
	assert.Error(t, err)
	assert.Zero(t, out.Len())
}

func TestDecodeIPv4(t *testing.T) {
	assert.NotNil(t, decodeIPv4(udpFrame(t, 1, 2, "x"), layers.LinkTypeEthernet))

	arp := serialize(t, &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}, gopacket.Payload(make([]byte, 28)))
	assert.Nil(t, decodeIPv4(arp, layers.LinkTypeEthernet))
}

func TestRootCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pcap")
	output := filepath.Join(dir, "out.pcap")
	require.NoError(t, os.WriteFile(input, capture(t, udpFrame(t, 40000, 7, "ping")).Bytes(), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--input", input, "--output", output, "--port", "7"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "1 packets, 1 echoed")

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, readEchoes(t, f), 1)
}

func TestRootCommandNoInput(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--output", filepath.Join(t.TempDir(), "out.pcap")})
	assert.Error(t, cmd.Execute())
}
