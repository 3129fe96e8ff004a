package bk178x

import "fmt"

// Status codes carried in byte 3 of a status reply.
const (
	StatusCodeSuccess             byte = 0x80
	StatusCodeChecksumError       byte = 0x90
	StatusCodeIncorrectParameter  byte = 0xA0
	StatusCodeUnrecognizedCommand byte = 0xB0
	StatusCodeInvalidCommand      byte = 0xC0
)

// Status is the outcome of a single command exchange.
type Status int

const (
	StatusSuccess Status = iota
	StatusTimeout
	StatusChecksumMismatch
	StatusNotStatusPacket
	// StatusRemoteChecksumError means the supply rejected the command
	// because the frame it received failed its checksum.
	StatusRemoteChecksumError
	StatusIncorrectParameter
	StatusUnrecognizedCommand
	StatusInvalidCommand
	StatusUnknown
)

var statusText = map[Status]string{
	StatusSuccess:             "success: command accepted",
	StatusTimeout:             "timeout waiting for status packet",
	StatusChecksumMismatch:    "return packet checksum error",
	StatusNotStatusPacket:     "did not receive status packet",
	StatusRemoteChecksumError: "remote checksum error",
	StatusIncorrectParameter:  "incorrect parameter",
	StatusUnrecognizedCommand: "unrecognized command",
	StatusInvalidCommand:      "invalid command",
	StatusUnknown:             "unknown status",
}

func (s Status) String() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var statusLabels = [...]string{
	StatusSuccess:             "success",
	StatusTimeout:             "timeout",
	StatusChecksumMismatch:    "checksum_mismatch",
	StatusNotStatusPacket:     "not_status_packet",
	StatusRemoteChecksumError: "remote_checksum_error",
	StatusIncorrectParameter:  "incorrect_parameter",
	StatusUnrecognizedCommand: "unrecognized_command",
	StatusInvalidCommand:      "invalid_command",
	StatusUnknown:             "unknown",
}

// label is the metric label value for s.
func (s Status) label() string {
	if s >= 0 && int(s) < len(statusLabels) {
		return statusLabels[s]
	}
	return "unknown"
}

// OK reports whether s is the success outcome.
func (s Status) OK() bool { return s == StatusSuccess }

// category returns the sentinel error s belongs to, or nil for success.
func (s Status) category() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusTimeout:
		return ErrTimeout
	case StatusChecksumMismatch:
		return ErrChecksumMismatch
	case StatusNotStatusPacket:
		return ErrMalformedReply
	case StatusRemoteChecksumError, StatusIncorrectParameter, StatusUnrecognizedCommand, StatusInvalidCommand:
		return ErrDeviceRejected
	default:
		return ErrUnknownStatus
	}
}

// DecodeStatus classifies a complete reply frame. The checks run in order
// and the first failing one decides the result.
func DecodeStatus(f *Frame) Status {
	if !f.Valid() {
		return StatusChecksumMismatch
	}
	if f.Command() != cmdStatus {
		return StatusNotStatusPacket
	}
	switch f.Payload()[0] {
	case StatusCodeChecksumError:
		return StatusRemoteChecksumError
	case StatusCodeIncorrectParameter:
		return StatusIncorrectParameter
	case StatusCodeUnrecognizedCommand:
		return StatusUnrecognizedCommand
	case StatusCodeInvalidCommand:
		return StatusInvalidCommand
	case StatusCodeSuccess:
		return StatusSuccess
	default:
		return StatusUnknown
	}
}

// StatusReplyFrame builds the reply a supply sends for the given status
// code. It is used by simulators and tests.
func StatusReplyFrame(addr byte, code byte) Frame {
	f := NewFrame(addr, cmdStatus)
	f.Payload()[0] = code
	f.Seal()
	return f
}
