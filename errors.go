package bk178x

import (
	"errors"
	"fmt"
)

var (
	ErrClosed           = errors.New("bk178x: port closed")
	ErrTimeout          = errors.New("bk178x: reply timeout")
	ErrChecksumMismatch = errors.New("bk178x: reply checksum mismatch")
	ErrMalformedReply   = errors.New("bk178x: reply is not a status packet")
	ErrDeviceRejected   = errors.New("bk178x: command rejected by device")
	ErrUnknownStatus    = errors.New("bk178x: unknown status code")
	ErrInvalidPortName  = errors.New("bk178x: port not available")
)

var (
	ErrMsgNilPort = "port is nil"
)

// StatusError reports a command that did not end in StatusSuccess.
type StatusError struct {
	Command Command
	Address byte
	Status  Status
	// Code is byte 3 of the reply when one was decoded.
	Code byte
}

func (e *StatusError) Error() string {
	if e.Status == StatusUnknown {
		return fmt.Sprintf("%s (addr %d) failed: %s (0x%02X)", e.Command, e.Address, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (addr %d) failed: %s", e.Command, e.Address, e.Status)
}

// Unwrap returns the category sentinel, so errors.Is(err, ErrDeviceRejected)
// and friends work on a *StatusError.
func (e *StatusError) Unwrap() error {
	return e.Status.category()
}

// StatusOf extracts the exchange outcome from an error returned by a Device
// command. nil maps to StatusSuccess; errors that did not come from a
// decoded exchange map to StatusUnknown.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusUnknown
}
