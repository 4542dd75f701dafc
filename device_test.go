package phy

import (
	"testing"

	"github.com/pkg/errors"
)

func TestSend(t *testing.T) {
	lower := &mockDevice{}

	err := Send(lower, 3, func(frame []byte) error {
		copy(frame, []byte{1, 2, 3})
		return nil
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(lower.tx) != 1 || lower.tx[0].closed != 1 {
		t.Fatal("buffer not released exactly once")
	}
	if got := lower.tx[0].data; got[0] != 1 || got[2] != 3 {
		t.Errorf("frame = %v, want [1 2 3]", got)
	}
}

func TestSend_AcquireError(t *testing.T) {
	lower := &mockDevice{txErr: ErrTooLarge}
	called := false

	err := Send(lower, 3, func(frame []byte) error {
		called = true
		return nil
	})
	if err != ErrTooLarge {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
	if called {
		t.Error("fill called without a buffer")
	}
}

func TestSend_FillError(t *testing.T) {
	fillErr := errors.New("fill failed")
	lower := &mockDevice{closeErr: errors.New("close failed")}

	err := Send(lower, 1, func(frame []byte) error {
		return fillErr
	})
	if err != fillErr {
		t.Errorf("expected fillErr, got %v", err)
	}
	if lower.tx[0].closed != 1 {
		t.Error("buffer not released after fill error")
	}
}

func TestSend_CloseError(t *testing.T) {
	closeErr := errors.New("close failed")
	lower := &mockDevice{closeErr: closeErr}

	err := Send(lower, 1, func(frame []byte) error { return nil })
	if err != closeErr {
		t.Errorf("expected closeErr, got %v", err)
	}
}

func TestSend_FillPanic(t *testing.T) {
	lower := &mockDevice{}

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic")
			}
		}()
		_ = Send(lower, 1, func(frame []byte) error {
			panic("fill panic")
		})
	}()

	if lower.tx[0].closed != 1 {
		t.Error("buffer not released after panic")
	}
}
