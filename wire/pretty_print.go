// Package wire renders raw link-layer and network-layer frames as
// human-readable, indented protocol dumps.
package wire

import (
	"io"
	"strings"
)

// PrettyPrint is implemented by formatters that know how to decode a
// particular protocol from raw bytes.
//
// Implementations are expected to be zero-size types so they can be used
// as type parameters without any runtime representation.
type PrettyPrint interface {
	// PrettyPrint writes a dump of data to w, one line per decoded layer,
	// starting each line with indent. The only errors returned are errors
	// from w; malformed input is rendered, not reported.
	PrettyPrint(w io.Writer, data []byte, indent *Indent) error
}

// Indent tracks the nesting level of a dump.
// The outermost line carries the prefix; nested lines are aligned under it
// and marked with a backslash.
type Indent struct {
	prefix string
	level  int
}

// NewIndent returns an Indent at the outermost level.
func NewIndent(prefix string) *Indent {
	return &Indent{prefix: prefix}
}

// Increase moves one level deeper.
func (i *Indent) Increase() {
	i.level++
}

// Level returns the current nesting level.
func (i *Indent) Level() int {
	return i.level
}

func (i *Indent) String() string {
	if i.level == 0 {
		return i.prefix
	}
	return strings.Repeat(" ", len(i.prefix)+i.level-1) + "\\ "
}

// Fprint formats data with the formatter P, prefixing the first line with
// prefix.
func Fprint[P PrettyPrint](w io.Writer, prefix string, data []byte) error {
	var p P
	return p.PrettyPrint(w, data, NewIndent(prefix))
}
