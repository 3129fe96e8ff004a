package bk178x

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Exec implements Client. It writes f unchanged, so callers building their
// own frames must Seal them first.
func (d *Device) Exec(ctx context.Context, f Frame) error {
	if d.closed.Load() {
		return ErrClosed
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed.Load() {
		return ErrClosed
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := d.now()
	reply, got, err := d.exchange(ctx, &f)
	latency := d.now().Sub(start)

	if err != nil {
		d.metrics.recordTransportError(latency)
		if d.closed.Load() {
			return ErrClosed
		}
		d.logger.Warn().Err(err).Stringer("cmd", f.Command()).Msg("exchange failed")
		return err
	}

	status := StatusTimeout
	if got == FrameSize {
		status = DecodeStatus(&reply)
	}
	d.metrics.record(status, got, latency)
	d.logStatus(&f, status, &reply, got)

	if status.OK() {
		return nil
	}
	se := &StatusError{Command: f.Command(), Address: f.Address(), Status: status}
	if got == FrameSize {
		se.Code = reply.Payload()[0]
	}
	return se
}

// exchange writes req and collects one reply. A reply shorter than
// FrameSize with a nil error means the reply deadline passed.
func (d *Device) exchange(ctx context.Context, req *Frame) (Frame, int, error) {
	if err := d.writeFrame(ctx, req); err != nil {
		return Frame{}, 0, err
	}
	d.metrics.BytesWritten.Add(FrameSize)
	return d.readReply(ctx)
}

func (d *Device) writeFrame(ctx context.Context, f *Frame) error {
	written := 0
	for written < FrameSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := d.port.Write(f[written:])
		if err != nil {
			return fmt.Errorf("writing %s frame: %w", f.Command(), err)
		}
		if n == 0 {
			return fmt.Errorf("writing %s frame: %w", f.Command(), io.ErrShortWrite)
		}
		written += n
	}
	return nil
}

// readReply accumulates bytes until a full frame arrives or the deadline,
// fixed when the read begins, passes. The earlier of the reply timeout and
// the context deadline applies.
func (d *Device) readReply(ctx context.Context) (Frame, int, error) {
	var reply Frame

	deadline := d.now().Add(d.replyTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	got := 0
	for got < FrameSize {
		if err := ctx.Err(); err != nil {
			return reply, got, err
		}
		remaining := deadline.Sub(d.now())
		if remaining <= 0 {
			break
		}
		if err := d.port.SetReadTimeout(roundUpMillis(remaining)); err != nil {
			return reply, got, fmt.Errorf("setting read timeout: %w", err)
		}
		n, err := d.port.Read(reply[got:])
		got += n
		if err != nil {
			return reply, got, fmt.Errorf("reading reply: %w", err)
		}
	}
	return reply, got, nil
}

// roundUpMillis keeps sub-millisecond remainders from turning into a zero
// timeout, which go.bug.st/serial treats as non-blocking.
func roundUpMillis(d time.Duration) time.Duration {
	if r := d % time.Millisecond; r != 0 {
		d += time.Millisecond - r
	}
	return d
}

func (d *Device) logStatus(req *Frame, status Status, reply *Frame, got int) {
	if status.OK() {
		d.logger.Debug().Stringer("cmd", req.Command()).Msg(status.String())
		return
	}
	ev := d.logger.Warn().
		Stringer("cmd", req.Command()).
		Stringer("status", status).
		Int("received", got)
	if got == FrameSize {
		ev = ev.Str("reply", reply.String())
	}
	ev.Msg("command failed")
}
