package wire

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// EthernetFrame prints frames that start with an Ethernet II header.
type EthernetFrame struct{}

// PrettyPrint implements PrettyPrint.
func (EthernetFrame) PrettyPrint(w io.Writer, data []byte, indent *Indent) error {
	return printPacket(w, data, layers.LayerTypeEthernet, indent)
}

// IPv4Packet prints packets that start with an IPv4 header, as seen on
// IP-medium devices.
type IPv4Packet struct{}

// PrettyPrint implements PrettyPrint.
func (IPv4Packet) PrettyPrint(w io.Writer, data []byte, indent *Indent) error {
	return printPacket(w, data, layers.LayerTypeIPv4, indent)
}

// IPv6Packet prints packets that start with an IPv6 header.
type IPv6Packet struct{}

// PrettyPrint implements PrettyPrint.
func (IPv6Packet) PrettyPrint(w io.Writer, data []byte, indent *Indent) error {
	return printPacket(w, data, layers.LayerTypeIPv6, indent)
}

// printPacket decodes data starting at first and writes one line per layer,
// nesting each layer under the one that carried it.
func printPacket(w io.Writer, data []byte, first gopacket.Decoder, indent *Indent) error {
	packet := gopacket.NewPacket(data, first, gopacket.NoCopy)
	decoded := packet.Layers()
	if len(decoded) == 0 {
		_, err := fmt.Fprintf(w, "%s(empty frame)\n", indent)
		return err
	}

	for i := 0; i < len(decoded); i++ {
		layer := decoded[i]
		if i+1 < len(decoded) {
			// Some decoders add their layer before reporting an error. Such a
			// layer holds no decoded fields, so print its failure in its place.
			if _, ok := decoded[i+1].(*gopacket.DecodeFailure); ok && failedLayer(layer, layerInput(data, decoded, i)) {
				layer = decoded[i+1]
				i++
			}
		}

		var err error
		if failure, ok := layer.(*gopacket.DecodeFailure); ok {
			_, err = fmt.Fprintf(w, "%s(%v)\n", indent, failure.Error())
		} else {
			_, err = fmt.Fprintf(w, "%s%s\n", indent, summarize(layer))
		}
		if err != nil {
			return err
		}
		indent.Increase()
	}
	return nil
}

// layerInput returns the bytes the decoder of decoded[i] was given.
func layerInput(data []byte, decoded []gopacket.Layer, i int) []byte {
	if i == 0 {
		return data
	}
	return decoded[i-1].LayerPayload()
}

// failedLayer reports whether layer could not be decoded from input, as
// opposed to decoding cleanly and carrying a payload that could not.
func failedLayer(layer gopacket.Layer, input []byte) bool {
	if dl, ok := layer.(gopacket.DecodingLayer); ok {
		return dl.DecodeFromBytes(input, gopacket.NilDecodeFeedback) != nil
	}
	return len(layer.LayerPayload()) == 0
}

func summarize(layer gopacket.Layer) string {
	switch l := layer.(type) {
	case *layers.Ethernet:
		return fmt.Sprintf("EthernetII src=%v dst=%v type=%v", l.SrcMAC, l.DstMAC, l.EthernetType)
	case *layers.ARP:
		return fmt.Sprintf("ARP op=%s src=%v/%v dst=%v/%v",
			arpOperation(l.Operation),
			net.HardwareAddr(l.SourceHwAddress), net.IP(l.SourceProtAddress),
			net.HardwareAddr(l.DstHwAddress), net.IP(l.DstProtAddress))
	case *layers.IPv4:
		return fmt.Sprintf("IPv4 src=%v dst=%v proto=%v ttl=%d len=%d",
			l.SrcIP, l.DstIP, l.Protocol, l.TTL, l.Length)
	case *layers.IPv6:
		return fmt.Sprintf("IPv6 src=%v dst=%v nxt_hdr=%v hop_limit=%d",
			l.SrcIP, l.DstIP, l.NextHeader, l.HopLimit)
	case *layers.ICMPv4:
		return fmt.Sprintf("ICMPv4 %v id=%d seq=%d", l.TypeCode, l.Id, l.Seq)
	case *layers.ICMPv6:
		return fmt.Sprintf("ICMPv6 %v", l.TypeCode)
	case *layers.TCP:
		return fmt.Sprintf("TCP src=%d dst=%d%s seq=%d ack=%d win=%d len=%d",
			uint16(l.SrcPort), uint16(l.DstPort), tcpFlags(l), l.Seq, l.Ack, l.Window, len(l.Payload))
	case *layers.UDP:
		return fmt.Sprintf("UDP src=%d dst=%d len=%d", uint16(l.SrcPort), uint16(l.DstPort), l.Length)
	case *gopacket.Payload:
		return fmt.Sprintf("Payload len=%d", len(*l))
	default:
		return fmt.Sprintf("%v len=%d", layer.LayerType(), len(layer.LayerContents()))
	}
}

func arpOperation(op uint16) string {
	switch op {
	case layers.ARPRequest:
		return "request"
	case layers.ARPReply:
		return "reply"
	default:
		return fmt.Sprintf("%d", op)
	}
}

func tcpFlags(t *layers.TCP) string {
	var sb strings.Builder
	for _, f := range []struct {
		set  bool
		name string
	}{
		{t.SYN, "syn"},
		{t.FIN, "fin"},
		{t.RST, "rst"},
		{t.PSH, "psh"},
		{t.ACK, "ack"},
		{t.URG, "urg"},
	} {
		if f.set {
			sb.WriteString(" ")
			sb.WriteString(f.name)
		}
	}
	return sb.String()
}
