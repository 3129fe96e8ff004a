package bk178x

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
	"golang.org/x/time/rate"
)

// Client is the command surface of a bench supply. Every method returns nil
// only when the supply answered with a success status.
type Client interface {
	// SetRemoteMode switches between front-panel (false) and remote (true) control.
	SetRemoteMode(ctx context.Context, remote bool) error

	// SetOutput switches the output on or off.
	SetOutput(ctx context.Context, on bool) error

	// SetVoltage sets the voltage setpoint in millivolts.
	SetVoltage(ctx context.Context, mv uint32) error

	// SetCurrent sets the current limit in milliamps.
	SetCurrent(ctx context.Context, ma uint16) error

	// EnableLocalKey enables or disables the front-panel local key.
	EnableLocalKey(ctx context.Context, enable bool) error

	// Exec sends a prebuilt frame and waits for its status reply.
	Exec(ctx context.Context, f Frame) error

	// Close closes the underlying port. It is safe to call multiple times.
	Close() error
}

// Device drives one supply over one serial port.
//
// Only one request is outstanding at a time: concurrent calls are
// serialized, each building its own frame.
type Device struct {
	port         SerialPort
	addr         byte
	logger       zerolog.Logger
	metrics      *Metrics
	limiter      *rate.Limiter
	now          func() time.Time
	replyTimeout time.Duration

	// mu is held for the whole write/read exchange.
	mu sync.Mutex

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ Client = (*Device)(nil)

// New wraps an already open port.
func New(port SerialPort, opts ...Option) *Device {
	if port == nil {
		panic("bk178x: " + ErrMsgNilPort)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = &Metrics{}
	}

	d := &Device{
		port:         port,
		addr:         o.address,
		logger:       o.logger.With().Uint8("addr", o.address).Logger(),
		metrics:      o.metrics,
		now:          o.clock,
		replyTimeout: o.replyTimeout,
	}
	if o.commandGap > 0 {
		d.limiter = rate.NewLimiter(rate.Every(o.commandGap), 1)
	}
	return d
}

// Open opens the port named in cfg and returns a Device for it. Options in
// opts take precedence over the matching fields of cfg.
func Open(cfg Config, opts ...Option) (*Device, error) {
	cfg = cfg.withDefaults()
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid serial port configuration: %w", err)
	}

	mode, err := cfg.mode()
	if err != nil {
		return nil, err
	}

	ok, err := isPortAvailable(cfg.PortName)
	if err != nil {
		return nil, fmt.Errorf("listing ports: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPortName, cfg.PortName)
	}

	port, err := openPort(cfg.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("opening serial port: %w", err)
	}
	if err = setControlLines(port, cfg.DTR, cfg.RTS); err != nil {
		return nil, handleOpenError(port, err)
	}

	base := []Option{
		WithAddress(cfg.Address),
		WithReplyTimeout(cfg.ReplyTimeout),
		WithCommandGap(cfg.CommandGap),
	}
	return New(port, append(base, opts...)...), nil
}

// Address returns the device address.
func (d *Device) Address() byte { return d.addr }

// Metrics returns the counters this device records into.
func (d *Device) Metrics() *Metrics { return d.metrics }

// SetRemoteMode implements Client.
func (d *Device) SetRemoteMode(ctx context.Context, remote bool) error {
	return d.Exec(ctx, RemoteModeFrame(d.addr, remote))
}

// SetOutput implements Client.
func (d *Device) SetOutput(ctx context.Context, on bool) error {
	return d.Exec(ctx, OutputFrame(d.addr, on))
}

// SetVoltage implements Client.
func (d *Device) SetVoltage(ctx context.Context, mv uint32) error {
	return d.Exec(ctx, VoltageFrame(d.addr, mv))
}

// SetCurrent implements Client.
func (d *Device) SetCurrent(ctx context.Context, ma uint16) error {
	return d.Exec(ctx, CurrentFrame(d.addr, ma))
}

// EnableLocalKey implements Client.
func (d *Device) EnableLocalKey(ctx context.Context, enable bool) error {
	return d.Exec(ctx, LocalKeyFrame(d.addr, enable))
}

// Close implements Client. Closing the port unblocks an exchange that is
// waiting for a reply; that exchange then returns ErrClosed.
func (d *Device) Close() error {
	d.closed.Store(true)
	d.closeOnce.Do(func() {
		d.closeErr = d.port.Close()
		d.logger.Debug().Msg("port closed")
	})
	return d.closeErr
}
