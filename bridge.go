package phy

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Bridge forwards frames from a to b and from b to a until ctx is canceled
// or either device fails. Each direction runs in its own goroutine, so both
// devices must tolerate Receive and Transmit being called concurrently.
//
// A frame larger than the destination MTU stops the bridge with the
// destination's error. Wrap either side in a Tracer to print the bridged
// traffic.
func Bridge(ctx context.Context, a, b Device, opt ...BridgeOption) error {
	var opts bridgeOptions
	for _, o := range opt {
		o(&opts)
	}
	checkBridgeOptions(&opts)

	opts.logger.Info("bridge started", "a_mtu", a.MTU(), "b_mtu", b.MTU())
	opts.logger.Debug("bridge options", "poll_interval", opts.pollInterval)

	group, child := errgroup.WithContext(ctx)

	group.Go(func() error {
		return forward(child, a, b, "a->b", &opts)
	})

	group.Go(func() error {
		return forward(child, b, a, "b->a", &opts)
	})

	err := group.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		opts.logger.Info("bridge stopped with error", "error", err)
	} else {
		opts.logger.Info("bridge stopped")
	}

	return err
}

// forward copies frames from src to dst.
// Returns when the context is canceled or either device returns an error
// other than ErrExhausted.
func forward(ctx context.Context, src, dst Device, direction string, opts *bridgeOptions) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rx, err := src.Receive()
		if errors.Is(err, ErrExhausted) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.pollInterval):
			}
			continue
		}
		if err != nil {
			opts.logger.Debug("receive error", "direction", direction, "error", err)
			return err
		}

		frame := rx.Bytes()
		err = Send(dst, len(frame), func(buf []byte) error {
			copy(buf, frame)
			return nil
		})
		if err != nil {
			opts.logger.Debug("transmit error", "direction", direction, "length", len(frame), "error", err)
			return err
		}
	}
}
