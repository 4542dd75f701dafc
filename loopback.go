package phy

import "sync"

// Loopback is an in-memory device that hands every transmitted frame back
// to Receive in FIFO order. It is safe for concurrent use.
type Loopback struct {
	mtu int

	mu    sync.Mutex
	queue [][]byte
}

// NewLoopback creates an empty loopback device.
func NewLoopback(opts ...LoopbackOption) *Loopback {
	l := &Loopback{mtu: defaultLoopbackMTU}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// MTU returns the configured MTU.
func (l *Loopback) MTU() int {
	return l.mtu
}

// Len returns the number of frames waiting to be received.
func (l *Loopback) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.queue)
}

// Receive pops the oldest committed frame.
// Returns ErrExhausted if no frame is queued.
func (l *Loopback) Receive() (RxBuffer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		return nil, ErrExhausted
	}

	frame := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return byteBuffer(frame), nil
}

// Transmit returns a zeroed buffer of length bytes. The frame is queued
// when the buffer is closed.
// Returns ErrTooLarge if length exceeds the MTU.
func (l *Loopback) Transmit(length int) (TxBuffer, error) {
	if length < 0 || length > l.mtu {
		return nil, ErrTooLarge
	}

	return &loopbackTxBuffer{owner: l, frame: make([]byte, length)}, nil
}

func (l *Loopback) enqueue(frame []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.queue = append(l.queue, frame)
}

type loopbackTxBuffer struct {
	owner *Loopback
	frame []byte
}

func (b *loopbackTxBuffer) Bytes() []byte {
	return b.frame
}

func (b *loopbackTxBuffer) Close() error {
	if b.owner == nil {
		return nil
	}
	b.owner.enqueue(b.frame)
	b.owner = nil
	return nil
}
