//go:build linux

package phy

import (
	"encoding/binary"
	"net"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// ethernetHeaderLen is added to the interface MTU, which excludes the
	// link-layer header.
	ethernetHeaderLen = 14
	// vlanTagLen is extra receive room for one 802.1Q tag.
	vlanTagLen = 4
)

// RawSocket is a device bound to a network interface through an AF_PACKET
// socket. Frames include the Ethernet header. Receive never blocks.
//
// Opening a RawSocket requires CAP_NET_RAW.
type RawSocket struct {
	name string
	fd   int
	mtu  int

	mu     sync.Mutex
	closed bool
}

// NewRawSocket opens a raw socket on the named interface.
func NewRawSocket(name string) (*RawSocket, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, errors.Wrapf(err, "phy: lookup interface %q", name)
	}

	proto := htons(unix.ETH_P_ALL)
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, int(proto))
	if err != nil {
		return nil, errors.Wrap(err, "phy: open raw socket")
	}

	addr := &unix.SockaddrLinklayer{Protocol: proto, Ifindex: iface.Index}
	if err := unix.Bind(fd, addr); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrapf(err, "phy: bind raw socket to %q", name)
	}

	return &RawSocket{
		name: name,
		fd:   fd,
		mtu:  iface.MTU + ethernetHeaderLen,
	}, nil
}

// Name returns the interface the socket is bound to.
func (s *RawSocket) Name() string {
	return s.name
}

// MTU returns the interface MTU including the Ethernet header.
func (s *RawSocket) MTU() int {
	return s.mtu
}

// Receive reads one frame from the interface.
// Returns ErrExhausted when no frame is pending, ErrTruncated when the frame
// was longer than the MTU plus one VLAN tag, and ErrClosed after Close.
func (s *RawSocket) Receive() (RxBuffer, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	frame := make([]byte, s.mtu+vlanTagLen)
	// With MSG_TRUNC, packet sockets report the full frame length.
	n, _, err := unix.Recvfrom(s.fd, frame, unix.MSG_TRUNC)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, ErrExhausted
		}
		return nil, errors.Wrapf(err, "phy: receive on %q", s.name)
	}
	if err := checkReceived(n, len(frame)); err != nil {
		return nil, errors.Wrapf(err, "phy: receive on %q", s.name)
	}

	return byteBuffer(frame[:n]), nil
}

// checkReceived reports ErrTruncated when a frame of length n did not fit
// a buffer of capacity bytes.
func checkReceived(n, capacity int) error {
	if n > capacity {
		return errors.Wrapf(ErrTruncated, "%d byte frame, %d byte buffer", n, capacity)
	}
	return nil
}

// Transmit returns a zeroed buffer of length bytes that is written to the
// interface when closed.
func (s *RawSocket) Transmit(length int) (TxBuffer, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	if length < 0 || length > s.mtu {
		return nil, ErrTooLarge
	}

	return &rawTxBuffer{sock: s, frame: make([]byte, length)}, nil
}

// Close closes the socket. Safe to call multiple times.
func (s *RawSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return unix.Close(s.fd)
}

func (s *RawSocket) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

func (s *RawSocket) send(frame []byte) error {
	if s.isClosed() {
		return ErrClosed
	}

	if _, err := unix.Write(s.fd, frame); err != nil {
		return errors.Wrapf(err, "phy: transmit on %q", s.name)
	}
	return nil
}

type rawTxBuffer struct {
	sock  *RawSocket
	frame []byte
}

func (b *rawTxBuffer) Bytes() []byte {
	return b.frame
}

func (b *rawTxBuffer) Close() error {
	if b.sock == nil {
		return nil
	}
	sock := b.sock
	b.sock = nil
	return sock.send(b.frame)
}

// htons converts a short from host to network byte order.
func htons(v uint16) uint16 {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return binary.NativeEndian.Uint16(b[:])
}
