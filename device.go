// Package phy provides a minimal link-layer device abstraction and
// decorators over it. A Tracer prints every frame crossing a device,
// a Loopback hands transmitted frames back to the receiver, and Bridge
// forwards frames between two devices.
package phy

import "github.com/pkg/errors"

// Errors returned by devices in this package.
var (
	// ErrExhausted is returned by Receive when no frame is pending.
	ErrExhausted = errors.New("phy: exhausted")
	// ErrTooLarge is returned by Transmit when the requested length exceeds the MTU.
	ErrTooLarge = errors.New("phy: frame exceeds mtu")
	// ErrClosed is returned when operating on a closed device.
	ErrClosed = errors.New("phy: device closed")
	// ErrTruncated is returned by Receive when a frame did not fit the receive buffer.
	ErrTruncated = errors.New("phy: frame truncated")
)

// RxBuffer is an owned region holding one inbound frame.
type RxBuffer interface {
	// Bytes returns the frame contents.
	Bytes() []byte
}

// TxBuffer is an owned region the caller fills with one outbound frame.
// The frame is committed to the device when the buffer is closed.
type TxBuffer interface {
	// Bytes returns the writable frame contents. Writes into the returned
	// slice are visible to the device when the buffer is closed.
	Bytes() []byte
	// Close releases the buffer and commits the frame.
	// Calling Close more than once is a no-op.
	Close() error
}

// Device is the interface for link-layer transports.
// Implementations should document whether they are safe for concurrent use.
type Device interface {
	// MTU returns the largest frame the device will transmit.
	MTU() int
	// Receive returns the next inbound frame.
	// It returns ErrExhausted when nothing is pending.
	Receive() (RxBuffer, error)
	// Transmit returns a zeroed buffer of exactly length bytes.
	Transmit(length int) (TxBuffer, error)
}

// Send acquires a transmit buffer of length bytes from dev, passes its
// contents to fill, and releases the buffer when fill returns, including
// when fill panics. It returns the acquisition error, else the fill error,
// else the release error.
func Send(dev Device, length int, fill func(frame []byte) error) (err error) {
	buf, err := dev.Transmit(length)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := buf.Close(); err == nil {
			err = cerr
		}
	}()

	return fill(buf.Bytes())
}

// byteBuffer is a plain RxBuffer backed by a slice.
type byteBuffer []byte

func (b byteBuffer) Bytes() []byte {
	return b
}
