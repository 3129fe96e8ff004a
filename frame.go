package bk178x

import (
	"encoding/binary"
	"fmt"
)

const (
	// FrameSize is the fixed length of every frame in both directions.
	FrameSize = 26

	// PayloadSize is the number of command-specific bytes between the
	// command code and the checksum.
	PayloadSize = FrameSize - 4

	// SyncMarker is the first byte of every frame.
	SyncMarker byte = 0xAA

	// StatusMarker is the command code carried by every status reply.
	StatusMarker byte = 0x12
)

// Frame byte offsets.
const (
	offSync     = 0
	offAddress  = 1
	offCommand  = 2
	offPayload  = 3
	offChecksum = FrameSize - 1
)

// Command is a one-byte command code.
type Command byte

const (
	CmdRemoteMode     Command = 0x20
	CmdOutputControl  Command = 0x21
	CmdSetVoltage     Command = 0x23
	CmdSetCurrent     Command = 0x24
	CmdEnableLocalKey Command = 0x37

	cmdStatus = Command(StatusMarker)
)

var commandNames = map[Command]string{
	CmdRemoteMode:     "remote-mode",
	CmdOutputControl:  "output-control",
	CmdSetVoltage:     "set-voltage",
	CmdSetCurrent:     "set-current",
	CmdEnableLocalKey: "enable-local-key",
	cmdStatus:         "status",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(0x%02X)", byte(c))
}

// Frame is a single 26-byte message:
//
//	[0xAA][ADDR][CMD][PAYLOAD x22][CHECKSUM]
//
// Frames are values; every command builds its own.
type Frame [FrameSize]byte

// NewFrame returns a zeroed frame with the sync marker, address and command
// code set. The checksum is not written until Seal is called.
func NewFrame(addr byte, cmd Command) Frame {
	var f Frame
	f[offSync] = SyncMarker
	f[offAddress] = addr
	f[offCommand] = byte(cmd)
	return f
}

// Address returns byte 1.
func (f *Frame) Address() byte { return f[offAddress] }

// Command returns byte 2.
func (f *Frame) Command() Command { return Command(f[offCommand]) }

// Payload returns the mutable payload region, bytes 3..24.
func (f *Frame) Payload() []byte { return f[offPayload:offChecksum] }

// Checksum returns the stored checksum byte.
func (f *Frame) Checksum() byte { return f[offChecksum] }

// Seal computes the checksum over bytes 0..24 and stores it in byte 25.
func (f *Frame) Seal() {
	f[offChecksum] = Checksum(f[:offChecksum])
}

// Valid reports whether the stored checksum matches the frame contents.
func (f *Frame) Valid() bool {
	return Checksum(f[:offChecksum]) == f[offChecksum]
}

func (f Frame) String() string {
	return fmt.Sprintf("% X", f[:])
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// RemoteModeFrame builds a remote-mode command. false selects front-panel
// control, true selects remote control.
func RemoteModeFrame(addr byte, remote bool) Frame {
	f := NewFrame(addr, CmdRemoteMode)
	f.Payload()[0] = boolByte(remote)
	f.Seal()
	return f
}

// OutputFrame builds an output on/off command.
func OutputFrame(addr byte, on bool) Frame {
	f := NewFrame(addr, CmdOutputControl)
	f.Payload()[0] = boolByte(on)
	f.Seal()
	return f
}

// VoltageFrame builds a voltage setpoint command in millivolts.
func VoltageFrame(addr byte, mv uint32) Frame {
	f := NewFrame(addr, CmdSetVoltage)
	binary.LittleEndian.PutUint32(f.Payload()[:4], mv)
	f.Seal()
	return f
}

// CurrentFrame builds a current setpoint command in milliamps.
func CurrentFrame(addr byte, ma uint16) Frame {
	f := NewFrame(addr, CmdSetCurrent)
	binary.LittleEndian.PutUint16(f.Payload()[:2], ma)
	f.Seal()
	return f
}

// LocalKeyFrame builds the command that enables or disables the front-panel
// key used to return to local mode.
func LocalKeyFrame(addr byte, enable bool) Frame {
	f := NewFrame(addr, CmdEnableLocalKey)
	f.Payload()[0] = boolByte(enable)
	f.Seal()
	return f
}
