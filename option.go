package phy

import (
	"io"
	"os"
	"time"
)

// options holds the configuration for a Tracer.
type options struct {
	output io.Writer // trace sink
	logger Logger
}

// Option is a function that configures tracer options.
type Option func(*options)

// OutputOption returns an Option that sets the writer traces are printed to.
// If not set, traces go to os.Stdout.
func OutputOption(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// LoggerOption returns an Option that sets the logger.
// If not set, the default slog logger will be used.
func LoggerOption(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// checkOptions sets default values for tracer options.
func checkOptions(opts *options) {
	if opts.output == nil {
		opts.output = os.Stdout
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}
}

// Default configuration values.
const (
	// defaultLoopbackMTU is the MTU of a Loopback unless configured otherwise.
	defaultLoopbackMTU = 65535
	// defaultPollInterval is how long a bridge direction waits after ErrExhausted.
	defaultPollInterval = time.Millisecond
)

// LoopbackOption configures a Loopback.
type LoopbackOption func(*Loopback)

// LoopbackMTUOption sets the MTU of the loopback device.
// Non-positive values keep the default of 65535.
func LoopbackMTUOption(mtu int) LoopbackOption {
	return func(l *Loopback) {
		if mtu > 0 {
			l.mtu = mtu
		}
	}
}

// bridgeOptions holds the configuration for Bridge.
type bridgeOptions struct {
	pollInterval time.Duration
	logger       Logger
}

// BridgeOption configures Bridge.
type BridgeOption func(*bridgeOptions)

// PollIntervalOption sets how long a direction sleeps when its source
// device has nothing pending.
func PollIntervalOption(d time.Duration) BridgeOption {
	return func(o *bridgeOptions) {
		o.pollInterval = d
	}
}

// BridgeLoggerOption sets the logger used by Bridge.
func BridgeLoggerOption(logger Logger) BridgeOption {
	return func(o *bridgeOptions) {
		o.logger = logger
	}
}

// checkBridgeOptions sets default values for bridge options.
func checkBridgeOptions(opts *bridgeOptions) {
	if opts.pollInterval <= 0 {
		opts.pollInterval = defaultPollInterval
	}

	if opts.logger == nil {
		opts.logger = defaultLogger()
	}
}
