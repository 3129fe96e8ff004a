package bk178x

import (
	"time"

	"go.bug.st/serial"
)

// SerialPort abstracts the subset of go.bug.st/serial.Port used by this package.
//
// Read must return (0, nil) when the read timeout set by SetReadTimeout
// expires without data, which is how go.bug.st/serial behaves.
type SerialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// bugstPort wraps the concrete serial.Port to satisfy SerialPort.
type bugstPort struct {
	serial.Port
}

// allow tests to override external dependencies
var (
	openPort = func(name string, mode *serial.Mode) (SerialPort, error) {
		p, err := serial.Open(name, mode)
		if err != nil {
			return nil, err
		}
		return &bugstPort{Port: p}, nil
	}
	getPortsList = serial.GetPortsList
)

// AvailablePorts lists the serial ports present on the system.
func AvailablePorts() ([]string, error) {
	ports, err := getPortsList()
	if err != nil {
		return nil, err
	}
	return ports, nil
}
