package bk178x

import (
	"errors"
)

// controlLines is implemented by ports that expose modem control lines.
type controlLines interface {
	SetDTR(bool) error
	SetRTS(bool) error
}

// setControlLines drives DTR and RTS to the configured levels when the port
// supports it.
func setControlLines(port SerialPort, dtr, rts bool) error {
	cl, ok := port.(controlLines)
	if !ok {
		return nil
	}
	if err := cl.SetDTR(dtr); err != nil {
		return err
	}
	return cl.SetRTS(rts)
}

// handleOpenError closes the port and joins any error from closing with the original error
func handleOpenError(port SerialPort, err error) error {
	if e := port.Close(); e != nil {
		err = errors.Join(err, e)
	}
	return err
}
