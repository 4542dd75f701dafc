package wire

import (
	"fmt"
	"io"
	"strings"
)

// hexWidth is the number of bytes rendered per row.
const hexWidth = 16

// Hex prints frames as an offset, hex and ASCII dump without decoding
// any protocol.
type Hex struct{}

// PrettyPrint implements PrettyPrint.
func (Hex) PrettyPrint(w io.Writer, data []byte, indent *Indent) error {
	first := indent.String()
	if len(data) == 0 {
		_, err := fmt.Fprintf(w, "%s(empty frame)\n", first)
		return err
	}

	pad := strings.Repeat(" ", len(first))
	var sb strings.Builder
	for i := 0; i < len(data); i += hexWidth {
		if i == 0 {
			sb.WriteString(first)
		} else {
			sb.WriteString(pad)
		}
		fmt.Fprintf(&sb, "%04x: ", i)

		for j := 0; j < hexWidth; j++ {
			if i+j < len(data) {
				fmt.Fprintf(&sb, "%02x ", data[i+j])
			} else {
				sb.WriteString("   ")
			}
		}

		sb.WriteString(" |")
		for j := 0; j < hexWidth && i+j < len(data); j++ {
			b := data[i+j]
			if b >= 32 && b < 127 {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteString("|\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
