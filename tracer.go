package phy

import (
	"bytes"

	"github.com/Zereker/phy/wire"
)

// Directional markers that start every trace.
const (
	// RxPrefix marks inbound frames.
	RxPrefix = "<- "
	// TxPrefix marks outbound frames.
	TxPrefix = "-> "
)

// Tracer is a device that prints every frame traversing it and delegates
// to a lower device otherwise.
//
// P selects the protocol formatter and has no runtime representation.
// Inbound frames are printed as soon as they are received. Outbound frames
// are printed when the caller closes the transmit buffer, so the trace
// shows the frame as it is actually committed.
//
// A Tracer is safe for concurrent use only if the lower device is.
type Tracer[P wire.PrettyPrint, D Device] struct {
	lower D
	opts  options
}

var (
	_ Device   = (*Tracer[wire.EthernetFrame, *Loopback])(nil)
	_ TxBuffer = (*TracedTxBuffer[wire.EthernetFrame])(nil)
)

// NewTracer creates a tracer that owns lower.
//
//	dev := phy.NewTracer[wire.EthernetFrame](phy.NewLoopback())
func NewTracer[P wire.PrettyPrint, D Device](lower D, opt ...Option) *Tracer[P, D] {
	var opts options
	for _, o := range opt {
		o(&opts)
	}
	checkOptions(&opts)

	return &Tracer[P, D]{lower: lower, opts: opts}
}

// Unwrap returns the lower device. The tracer must not be used afterwards.
func (t *Tracer[P, D]) Unwrap() D {
	return t.lower
}

// MTU returns the MTU of the lower device.
func (t *Tracer[P, D]) MTU() int {
	return t.lower.MTU()
}

// Receive returns the next frame from the lower device after printing it.
// Errors from the lower device are returned as is and print nothing.
func (t *Tracer[P, D]) Receive() (RxBuffer, error) {
	buf, err := t.lower.Receive()
	if err != nil {
		return nil, err
	}

	trace[P](&t.opts, RxPrefix, buf.Bytes())
	return buf, nil
}

// Transmit returns a *TracedTxBuffer wrapping a buffer from the lower
// device. Errors from the lower device are returned as is.
func (t *Tracer[P, D]) Transmit(length int) (TxBuffer, error) {
	buf, err := t.lower.Transmit(length)
	if err != nil {
		return nil, err
	}

	return &TracedTxBuffer[P]{lower: buf, opts: &t.opts}, nil
}

// TracedTxBuffer is the transmit buffer handed out by a Tracer.
// Closing it prints the frame and then closes the lower buffer.
// Callers should close it with defer so the frame is printed and
// committed on every return path, including panics.
type TracedTxBuffer[P wire.PrettyPrint] struct {
	lower    TxBuffer
	opts     *options
	released bool
}

// Bytes returns the contents of the lower buffer.
func (b *TracedTxBuffer[P]) Bytes() []byte {
	return b.lower.Bytes()
}

// Close prints the final contents of the buffer and closes the lower
// buffer, returning its error. The lower buffer is closed even if the
// formatter panics. Only the first call has any effect.
func (b *TracedTxBuffer[P]) Close() (err error) {
	if b.released {
		return nil
	}
	b.released = true

	defer func() {
		err = b.lower.Close()
	}()
	trace[P](b.opts, TxPrefix, b.lower.Bytes())
	return nil
}

// trace formats data with P and writes it to the configured output in a
// single write. A failing output is logged and otherwise ignored.
func trace[P wire.PrettyPrint](opts *options, prefix string, data []byte) {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = wire.Fprint[P](&buf, prefix, data)

	if _, err := opts.output.Write(buf.Bytes()); err != nil {
		opts.logger.Debug("trace write error", "prefix", prefix, "length", len(data), "error", err)
	}
}
