package phy

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// queueDevice receives from a preloaded queue and records what it sends.
// It is safe for concurrent use.
type queueDevice struct {
	mtu int

	mu      sync.Mutex
	inbound [][]byte
	sent    [][]byte
	rxErr   error
}

func (d *queueDevice) MTU() int {
	return d.mtu
}

func (d *queueDevice) Receive() (RxBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.rxErr != nil {
		return nil, d.rxErr
	}
	if len(d.inbound) == 0 {
		return nil, ErrExhausted
	}
	frame := d.inbound[0]
	d.inbound = d.inbound[1:]
	return &mockRxBuffer{data: frame}, nil
}

func (d *queueDevice) Transmit(length int) (TxBuffer, error) {
	if length > d.mtu {
		return nil, ErrTooLarge
	}
	return &queueTxBuffer{dev: d, data: make([]byte, length)}, nil
}

func (d *queueDevice) push(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.inbound = append(d.inbound, frame)
}

func (d *queueDevice) sentFrames() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([][]byte(nil), d.sent...)
}

type queueTxBuffer struct {
	dev  *queueDevice
	data []byte
}

func (b *queueTxBuffer) Bytes() []byte {
	return b.data
}

func (b *queueTxBuffer) Close() error {
	b.dev.mu.Lock()
	defer b.dev.mu.Unlock()

	b.dev.sent = append(b.dev.sent, b.data)
	return nil
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timeout waiting for condition")
		}
		time.Sleep(time.Millisecond)
	}
}

func runBridge(ctx context.Context, a, b Device, opts ...BridgeOption) chan error {
	done := make(chan error, 1)
	go func() {
		done <- Bridge(ctx, a, b, opts...)
	}()
	return done
}

func TestBridge_ForwardsBothWays(t *testing.T) {
	a := &queueDevice{mtu: 1500}
	b := &queueDevice{mtu: 1500}
	a.push([]byte("from a"))
	b.push([]byte("from b"))

	ctx, cancel := context.WithCancel(context.Background())
	done := runBridge(ctx, a, b, BridgeLoggerOption(&mockLogger{}))

	waitFor(t, func() bool {
		return len(a.sentFrames()) == 1 && len(b.sentFrames()) == 1
	})
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Bridge to return")
	}

	if got := b.sentFrames()[0]; !bytes.Equal(got, []byte("from a")) {
		t.Errorf("b sent %q, want %q", got, "from a")
	}
	if got := a.sentFrames()[0]; !bytes.Equal(got, []byte("from b")) {
		t.Errorf("a sent %q, want %q", got, "from b")
	}
}

func TestBridge_ReceiveError(t *testing.T) {
	rxErr := errors.New("link down")
	logger := &mockLogger{}
	a := &queueDevice{mtu: 1500, rxErr: rxErr}
	b := &queueDevice{mtu: 1500}

	done := runBridge(context.Background(), a, b,
		BridgeLoggerOption(logger),
		PollIntervalOption(time.Millisecond),
	)

	select {
	case err := <-done:
		if err != rxErr {
			t.Errorf("expected rxErr, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Bridge to return")
	}

	infos := logger.infoMessages()
	if len(infos) != 2 || infos[1] != "bridge stopped with error" {
		t.Errorf("info logs = %v", infos)
	}
}

func TestBridge_DestinationTooSmall(t *testing.T) {
	a := &queueDevice{mtu: 1500}
	b := &queueDevice{mtu: 4}
	a.push([]byte("oversized"))

	done := runBridge(context.Background(), a, b, BridgeLoggerOption(&mockLogger{}))

	select {
	case err := <-done:
		if err != ErrTooLarge {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for Bridge to return")
	}
}

func TestBridge_Traced(t *testing.T) {
	log := &eventLog{}
	a := &queueDevice{mtu: 1500}
	inner := &queueDevice{mtu: 1500}
	b := NewTracer[hexLine](inner, OutputOption(log))
	a.push([]byte{0xca, 0xfe})

	ctx, cancel := context.WithCancel(context.Background())
	done := runBridge(ctx, a, b, BridgeLoggerOption(&mockLogger{}))

	waitFor(t, func() bool { return len(inner.sentFrames()) == 1 })
	cancel()
	<-done

	events := log.all()
	if len(events) != 1 || !strings.HasPrefix(events[0], "-> |cafe") {
		t.Errorf("events = %q, want one outbound trace", events)
	}
}
