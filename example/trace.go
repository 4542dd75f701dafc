package main

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/Zereker/phy"
	"github.com/Zereker/phy/wire"
)

func main() {
	if err := run(); err != nil {
		slog.Error("trace example failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		format string
		count  int
		mtu    int
	)

	flagSet := pflag.NewFlagSet("trace", pflag.ContinueOnError)
	flagSet.StringVar(&format, "format", "ethernet", "trace format: ethernet, ipv4 or hex")
	flagSet.IntVar(&count, "count", 3, "number of frames to send through the loopback")
	flagSet.IntVar(&mtu, "mtu", 1514, "loopback MTU")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	loopback := phy.NewLoopback(phy.LoopbackMTUOption(mtu))

	var dev phy.Device
	switch format {
	case "ethernet":
		dev = phy.NewTracer[wire.EthernetFrame](loopback)
	case "ipv4":
		dev = phy.NewTracer[wire.IPv4Packet](loopback)
	case "hex":
		dev = phy.NewTracer[wire.Hex](loopback)
	default:
		return errors.Errorf("unknown format %q", format)
	}

	slog.Info("tracing loopback", "format", format, "count", count, "mtu", dev.MTU())

	for seq := 0; seq < count; seq++ {
		frame, err := buildFrame(format != "ipv4", seq)
		if err != nil {
			return err
		}

		err = phy.Send(dev, len(frame), func(buf []byte) error {
			copy(buf, frame)
			return nil
		})
		if err != nil {
			return err
		}
	}

	for {
		_, err := dev.Receive()
		if errors.Is(err, phy.ErrExhausted) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// buildFrame serializes a UDP datagram, with an Ethernet header when
// ethernet is set.
func buildFrame(ethernet bool, seq int) ([]byte, error) {
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IP{10, 0, 0, 1},
		DstIP:    net.IP{10, 0, 0, 2},
	}
	udp := &layers.UDP{SrcPort: layers.UDPPort(49152 + seq), DstPort: 7}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, err
	}
	payload := gopacket.Payload(fmt.Sprintf("frame %d", seq))

	stack := []gopacket.SerializableLayer{ip, udp, payload}
	if ethernet {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
			DstMAC:       net.HardwareAddr{0x02, 0, 0, 0, 0, 0x02},
			EthernetType: layers.EthernetTypeIPv4,
		}
		stack = append([]gopacket.SerializableLayer{eth}, stack...)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, stack...); err != nil {
		return nil, errors.Wrapf(err, "serialize frame %d", seq)
	}
	return buf.Bytes(), nil
}
