package bk178x

import (
	"time"

	"github.com/rs/zerolog"
)

// options holds the per-device settings applied by New.
type options struct {
	address      byte
	logger       zerolog.Logger
	replyTimeout time.Duration
	commandGap   time.Duration
	clock        func() time.Time
	metrics      *Metrics
}

func defaultOptions() options {
	return options{
		logger:       zerolog.Nop(),
		replyTimeout: DefaultReplyTimeout,
		clock:        time.Now,
	}
}

// Option is a functional option for configuring a Device.
type Option func(*options)

// WithAddress sets the device address written to byte 1 of every frame.
func WithAddress(addr byte) Option {
	return func(o *options) {
		o.address = addr
	}
}

// WithLogger sets the logger used for exchange diagnostics.
//
// Example:
//
//	dev := bk178x.New(port, bk178x.WithLogger(log.With().Str("psu", "bench-1").Logger()))
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithReplyTimeout overrides the one second cap on waiting for a reply.
// Non-positive values are ignored.
func WithReplyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.replyTimeout = d
		}
	}
}

// WithCommandGap enforces a minimum spacing between consecutive commands.
func WithCommandGap(d time.Duration) Option {
	return func(o *options) {
		o.commandGap = d
	}
}

// WithClock replaces the clock used to bound the reply wait.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithMetrics makes the device record into m instead of a private Metrics,
// so several devices can share one set of counters.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}
