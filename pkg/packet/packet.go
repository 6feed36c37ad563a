// Package packet builds base frames for the skeleton sender payload.
package packet

import (
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mcuadros/go-defaults"
)

const (
	MinFrameSize = 64
	MaxFrameSize = 1522
	// FCSSize trailing bytes are left zero for the generator to fill.
	FCSSize = 4

	headerSize = 14 + 20 + 8
)

// Config describes an Ethernet/IPv4/UDP frame. Size counts the whole frame,
// FCS included.
type Config struct {
	SrcMAC  string `default:"02:00:00:00:00:01"`
	DstMAC  string `default:"ff:ff:ff:ff:ff:ff"`
	SrcIP   string `default:"192.0.2.1"`
	DstIP   string `default:"198.51.100.1"`
	SrcPort uint16 `default:"8080"`
	DstPort uint16 `default:"8081"`
	TTL     uint8  `default:"64"`
	Size    int    `default:"64"`
	// Fill is repeated over the UDP payload.
	Fill string `default:"x"`
}

func DefaultConfig() Config {
	var c Config
	defaults.SetDefaults(&c)
	return c
}

func parseIPv4(s string) (net.IP, error) {
	ip := net.ParseIP(s).To4()
	if ip == nil {
		return nil, fmt.Errorf("%q is not an IPv4 address", s)
	}
	return ip, nil
}

// Build serializes the frame with lengths and checksums computed. Frames
// shorter than MinFrameSize are padded up to it.
func Build(cfg Config) ([]byte, error) {
	size := cfg.Size
	if size < MinFrameSize {
		size = MinFrameSize
	}
	if size > MaxFrameSize {
		return nil, fmt.Errorf("frame size %d exceeds %d bytes", size, MaxFrameSize)
	}
	src, err := net.ParseMAC(cfg.SrcMAC)
	if err != nil {
		return nil, fmt.Errorf("invalid source MAC: %w", err)
	}
	dst, err := net.ParseMAC(cfg.DstMAC)
	if err != nil {
		return nil, fmt.Errorf("invalid destination MAC: %w", err)
	}
	srcIP, err := parseIPv4(cfg.SrcIP)
	if err != nil {
		return nil, fmt.Errorf("invalid source IP: %w", err)
	}
	dstIP, err := parseIPv4(cfg.DstIP)
	if err != nil {
		return nil, fmt.Errorf("invalid destination IP: %w", err)
	}

	eth := &layers.Ethernet{
		SrcMAC:       src,
		DstMAC:       dst,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip4 := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      cfg.TTL,
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Protocol: layers.IPProtocolUDP,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(cfg.SrcPort),
		DstPort: layers.UDPPort(cfg.DstPort),
	}
	if err := udp.SetNetworkLayerForChecksum(ip4); err != nil {
		return nil, fmt.Errorf("failed to set network layer for checksum: %w", err)
	}

	payload := make([]byte, size-FCSSize-headerSize)
	if len(cfg.Fill) > 0 {
		for i := range payload {
			payload[i] = cfg.Fill[i%len(cfg.Fill)]
		}
	}

	buf := gopacket.NewSerializeBuffer()
	err = gopacket.SerializeLayers(buf,
		gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true},
		eth, ip4, udp, gopacket.Payload(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize packet: %w", err)
	}
	return append(buf.Bytes(), make([]byte, FCSSize)...), nil
}
